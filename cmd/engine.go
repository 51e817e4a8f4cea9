package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/applypilot/applypilot/internal/ai/gemini"
	"github.com/applypilot/applypilot/internal/forms"
	"github.com/applypilot/applypilot/internal/jobs"
	"github.com/applypilot/applypilot/internal/secrets"
)

// newCompletion builds the Gemini-backed completion client from config.
func newCompletion(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Client, error) {
	ai := config.AI
	if ai == nil {
		ai = &AIConfig{}
	}

	provider := strings.TrimSpace(strings.ToLower(ai.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", ai.Provider)
	}

	geminiCfg := ai.Gemini
	if geminiCfg == nil {
		geminiCfg = &GeminiConfig{}
	}

	apiKeyFile := geminiCfg.APIKeyFile
	if apiKeyFile == "" {
		apiKeyFile = strings.TrimSpace(viper.GetString("ai.gemini.api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	clientLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", geminiCfg.Model),
	)

	return gemini.New(ctx, gemini.Config{
		APIKey:            apiKey,
		Model:             geminiCfg.Model,
		MaxRetries:        geminiCfg.MaxRetries,
		RequestsPerMinute: geminiCfg.RequestsPerMinute,
		MaxLogLength:      geminiCfg.MaxLogLength,
	}, clientLogger)
}

// loadResume reads the configured base resume. The document is optional for
// answering; the mime type follows the file extension.
func loadResume(config *Config) ([]byte, string, error) {
	path := strings.TrimSpace(config.ResumeFile)
	if path == "" {
		return nil, "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading resume file %q: %w", path, err)
	}

	mime := "text/markdown"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		mime = "application/pdf"
	case ".txt":
		mime = "text/plain"
	}

	return data, mime, nil
}

// loadJobDescription reads the job description file, converting HTML exports
// to markdown text.
func loadJobDescription(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading job description %q: %w", path, err)
	}

	text := string(data)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return jobs.DescriptionFromHTML(text)
	default:
		return strings.TrimSpace(text), nil
	}
}

// openStore builds the response store honoring the flag/env/config precedence.
func openStore(config *Config, logger *zap.Logger) *forms.Store {
	override := strings.TrimSpace(viper.GetString("responses-file"))
	return forms.OpenStore(forms.CandidatePaths(override, config.ResponsesFile), logger)
}
