package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

// generator produces raw model text for a prompt.
type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// genaiGenerator calls the Gemini API through the official SDK.
type genaiGenerator struct {
	apiKey      string
	model       string
	temperature float32
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("%w: gemini generation: %v", ErrExtractionFailed, err)
	}
	return result.Text(), nil
}

// GeminiExtractor asks Gemini for the profit and loss statement as rows.
type GeminiExtractor struct {
	apiKey string
	model  string
	gen    generator
	logger *slog.Logger
}

// NewGeminiExtractor creates an extractor from the extraction config.
func NewGeminiExtractor(cfg config.ExtractionConfig, logger *slog.Logger) *GeminiExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.GeminiModel
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiExtractor{
		apiKey: cfg.GeminiAPIKey,
		model:  model,
		gen: &genaiGenerator{
			apiKey:      cfg.GeminiAPIKey,
			model:       model,
			temperature: cfg.GeminiTemperature,
		},
		logger: logger.With(slog.String("component", "gemini")),
	}
}

// Configured reports whether an API key is present.
func (e *GeminiExtractor) Configured() bool {
	return e.apiKey != ""
}

// ExtractRecords returns the statement rows found in markdown. Output that
// cannot be parsed even after repair yields no rows rather than an error.
func (e *GeminiExtractor) ExtractRecords(ctx context.Context, markdown string) ([]domain.Record, error) {
	if !e.Configured() {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY not set", ErrNotConfigured)
	}

	start := time.Now()
	raw, err := e.gen.Generate(ctx, BuildPrompt(markdown))
	if err != nil {
		return nil, err
	}

	res, err := DecodeRecords(raw)
	if err != nil {
		e.logger.ErrorContext(ctx, "model output is not usable JSON",
			slog.String("model", e.model),
			slog.Int("response_bytes", len(raw)),
			slog.String("error", err.Error()))
		return []domain.Record{}, nil
	}

	e.logger.InfoContext(ctx, "structured rows extracted",
		slog.String("model", e.model),
		slog.Int("rows", len(res.Records)),
		slog.Bool("repaired", res.Repaired),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", time.Since(start)))
	return res.Records, nil
}
