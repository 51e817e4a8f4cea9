package resume

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "embed"

	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/forms"
	"github.com/applypilot/applypilot/internal/jobs"
)

//go:embed prompt.md
var promptTemplate string

// Tailor rewrites the base resume for a specific posting and writes the
// result as a markdown artifact.
type Tailor struct {
	completion forms.Completion
	base       []byte
	baseMime   string
	outDir     string
	logger     *zap.Logger
}

func NewTailor(completion forms.Completion, base []byte, baseMime, outDir string, logger *zap.Logger) *Tailor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tailor{
		completion: completion,
		base:       base,
		baseMime:   baseMime,
		outDir:     outDir,
		logger:     logger,
	}
}

// Generate produces the tailored resume and returns the artifact path.
func (t *Tailor) Generate(ctx context.Context, posting jobs.Posting) (string, error) {
	description := strings.TrimSpace(posting.Description)
	if description == "" {
		return "", errors.New("job description is required")
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", posting.PromptContext())

	raw, err := t.completion.Complete(ctx, prompt, t.base, t.baseMime)
	if err != nil {
		return "", fmt.Errorf("generate tailored resume: %w", err)
	}

	content := stripFences(raw)
	if content == "" {
		return "", errors.New("model returned an empty resume")
	}

	if err := os.MkdirAll(t.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create artifacts directory: %w", err)
	}

	path := filepath.Join(t.outDir, artifactName(posting))
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write tailored resume: %w", err)
	}

	t.logger.Info("tailored resume written",
		zap.String("path", path),
		zap.String("title", posting.Title),
		zap.String("company", posting.Company),
	)
	return path, nil
}

func artifactName(posting jobs.Posting) string {
	company := sanitizeFilename(posting.Company)
	title := sanitizeFilename(posting.Title)
	switch {
	case company == "" && title == "":
		return "resume.md"
	case company == "":
		return title + ".md"
	case title == "":
		return company + ".md"
	default:
		return company + "_" + title + ".md"
	}
}

// sanitizeFilename keeps letters, digits, dashes and underscores, mapping
// whitespace runs to single underscores and dropping everything else.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, field := range strings.Fields(name) {
		var part strings.Builder
		for _, r := range field {
			switch {
			case r == '-' || r == '_':
				part.WriteRune(r)
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				part.WriteRune(r)
			}
		}
		if part.Len() == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteRune('_')
		}
		b.WriteString(part.String())
	}
	return b.String()
}

// stripFences removes a surrounding markdown code fence the model sometimes
// wraps the document in.
func stripFences(raw string) string {
	content := strings.TrimSpace(raw)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```md")
	content = strings.TrimPrefix(content, "```")
	if idx := strings.LastIndex(content, "```"); idx != -1 {
		content = content[:idx]
	}
	return strings.TrimSpace(content)
}
