package forms

import (
	"context"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/logger"
)

// Completion produces a model completion for a prompt, optionally grounded on
// an attached document such as a resume PDF.
type Completion interface {
	Complete(ctx context.Context, prompt string, document []byte, mimeType string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// GenerateRequest describes a question the store could not answer.
type GenerateRequest struct {
	Question       string
	Options        []string
	ErrorContext   string
	JobDescription string
	// Persist controls whether the generated answer is written back to the
	// store. On validation-error retries the corrected answer overwrites
	// the record that triggered the error.
	Persist bool
}

// Generator is the fallback of last resort: it asks the model for an answer
// when nothing in the store matches. Generated answers are persisted in raw
// form, before option resolution, so they stay reusable when the same
// question later appears with differently worded options.
type Generator struct {
	completion Completion
	store      *Store
	resolver   *OptionResolver
	resume     []byte
	resumeMime string
	logger     *zap.Logger
	maxLogLen  int
}

func NewGenerator(completion Completion, store *Store, resolver *OptionResolver, resume []byte, resumeMime string, log *zap.Logger, maxLogLength int) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Generator{
		completion: completion,
		store:      store,
		resolver:   resolver,
		resume:     resume,
		resumeMime: resumeMime,
		logger:     log,
		maxLogLen:  maxLogLength,
	}
}

// Generate asks the model for an answer and maps it onto the presented
// options. A model failure is never fatal to the form: when options exist the
// first one is taken as a safe default, otherwise the field is reported
// unanswerable with ok=false.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (string, bool) {
	prompt := buildPrompt(req)

	g.logger.Debug("generating answer",
		zap.String("question", req.Question),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.completion.Complete(ctx, prompt, g.resume, g.resumeMime)
	answer := cleanAnswer(raw)

	if err != nil || answer == "" {
		if err != nil {
			g.logger.Warn("answer generation failed",
				zap.String("question", req.Question),
				zap.Error(err),
			)
		} else {
			g.logger.Warn("model returned an empty answer", zap.String("question", req.Question))
		}
		if len(req.Options) > 0 {
			g.logger.Info("falling back to first option", zap.String("option", req.Options[0]))
			return req.Options[0], true
		}
		return "", false
	}

	g.logger.Info("generated answer",
		zap.String("question", req.Question),
		zap.String("answer", logger.TruncateForLog(answer, g.maxLogLen)),
	)

	if req.Persist && g.store != nil {
		key := NormalizeKey(req.Question)
		if key != "" {
			g.store.Put(key, answer, req.Options, SourceAIGenerated)
		}
	}

	if len(req.Options) == 0 {
		return answer, true
	}
	if resolved, ok := g.resolver.Resolve(answer, req.Options); ok {
		return resolved, true
	}
	g.logger.Info("generated answer matches no option, taking the first",
		zap.String("answer", answer),
		zap.String("option", req.Options[0]),
	)
	return req.Options[0], true
}

func buildPrompt(req GenerateRequest) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "{{ERROR}}\nQuestion: {{QUESTION}}\n{{OPTIONS}}\n\nJob description:\n{{JOB_DESCRIPTION}}"
	}

	options := ""
	if len(req.Options) > 0 {
		options = "Available options: " + strings.Join(req.Options, ", ")
	}

	jobDescription := strings.TrimSpace(req.JobDescription)
	if jobDescription == "" {
		jobDescription = "no job description given"
	}

	errLine := ""
	if e := strings.TrimSpace(req.ErrorContext); e != "" {
		errLine = "IMPORTANT: " + e + "!!!"
	}

	prompt := strings.ReplaceAll(template, "{{QUESTION}}", strings.TrimSpace(req.Question))
	prompt = strings.ReplaceAll(prompt, "{{OPTIONS}}", options)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{ERROR}}", errLine)
	return prompt
}

// cleanAnswer strips model decoration: code fences, surrounding quotes,
// trailing periods on single-line answers.
func cleanAnswer(raw string) string {
	answer := strings.TrimSpace(raw)
	if strings.HasPrefix(answer, "```") {
		answer = strings.TrimPrefix(answer, "```")
		if idx := strings.Index(answer, "\n"); idx != -1 && !strings.Contains(answer[:idx], " ") {
			answer = answer[idx+1:]
		}
		if idx := strings.LastIndex(answer, "```"); idx != -1 {
			answer = answer[:idx]
		}
		answer = strings.TrimSpace(answer)
	}
	answer = strings.Trim(answer, "\"'`")
	if !strings.Contains(answer, "\n") && len(answer) > 1 && strings.HasSuffix(answer, ".") {
		answer = strings.TrimSuffix(answer, ".")
	}
	return strings.TrimSpace(answer)
}
