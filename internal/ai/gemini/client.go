package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/applypilot/applypilot/internal/logger"
)

const (
	defaultModel      = "gemini-2.0-flash"
	defaultMaxRetries = 3
	defaultMaxLogLen  = 200
	retryDelay        = 2 * time.Second
)

// sleep is swappable in tests.
var sleep = time.Sleep

type contentCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client is a thin wrapper over the Gemini API tuned for short form-filling
// completions: rate limited, circuit broken, with retries on transient
// failures. It implements forms.Completion.
type Client struct {
	models     contentCaller
	model      string
	maxRetries int
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[*genai.GenerateContentResponse]
	logger     *zap.Logger
	maxLogLen  int
}

type Config struct {
	APIKey            string
	Model             string
	MaxRetries        int
	RequestsPerMinute int
	MaxLogLength      int
}

// New creates a Client against the public Gemini API backend.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newClient(client.Models, cfg, log), nil
}

func newClient(models contentCaller, cfg Config, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	maxLogLen := cfg.MaxLogLength
	if maxLogLen <= 0 {
		maxLogLen = defaultMaxLogLen
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), 1)
	}

	breaker := gobreaker.NewCircuitBreaker[*genai.GenerateContentResponse](gobreaker.Settings{
		Name:    "gemini-" + model,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("gemini circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		models:     models,
		model:      model,
		maxRetries: maxRetries,
		limiter:    limiter,
		breaker:    breaker,
		logger:     log,
		maxLogLen:  maxLogLen,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Complete sends the prompt, optionally with an attached document, and
// returns the concatenated candidate text.
func (c *Client) Complete(ctx context.Context, prompt string, document []byte, mimeType string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	parts := make([]*genai.Part, 0, 2)
	if len(document) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: mimeType, Data: document},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	c.logger.Debug("gemini generate content request",
		zap.String("model", c.model),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.Bool("has_document", len(document) > 0),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, c.maxLogLen)),
	)

	var resp *genai.GenerateContentResponse
	var err error
	for attempt := 1; ; attempt++ {
		if c.limiter != nil {
			if werr := c.limiter.Wait(ctx); werr != nil {
				return "", fmt.Errorf("rate limit wait: %w", werr)
			}
		}

		resp, err = c.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
			return c.models.GenerateContent(ctx, c.model, contents, nil)
		})
		if err == nil {
			break
		}
		if attempt >= c.maxRetries || !isTemporary(err) {
			return "", fmt.Errorf("generate content: %w", err)
		}

		c.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", c.maxRetries),
			zap.Error(err),
		)
		sleep(retryDelay)
	}

	output := collectText(resp)
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	c.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.TruncateForLog(output, c.maxLogLen)),
	)

	return output, nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}
	return strings.TrimSpace(builder.String())
}

var retryAfterPattern = regexp.MustCompile(`retry after (\d+) seconds`)

// isTemporary reports whether the failure is worth a retry. Server errors and
// short quota pushbacks are; a quota message demanding more than 30 seconds
// of backoff is treated as terminal so the caller falls back instead of
// stalling the form.
func isTemporary(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code >= 500 {
		return true
	}
	if apiErr.Code == 429 {
		if m := retryAfterPattern.FindStringSubmatch(apiErr.Message); m != nil {
			if secs, err := strconv.Atoi(m[1]); err == nil && secs > 30 {
				return false
			}
		}
		return true
	}
	return false
}
