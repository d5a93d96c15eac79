package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

type stubGenerator struct {
	text   string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func newStubExtractor(gen generator) *GeminiExtractor {
	cfg := config.Default().Extraction
	cfg.GeminiAPIKey = "test-key"
	e := NewGeminiExtractor(cfg, discardLogger())
	e.gen = gen
	return e
}

func TestGeminiExtractRecords(t *testing.T) {
	gen := &stubGenerator{text: `[
		{"Particulars": "Revenue from operations", "FY26": 123456, "FY25": 120000.5},
		{"Particulars": "Total Income", "FY26": null, "FY25": "122000"}
	]`}
	records, err := newStubExtractor(gen).ExtractRecords(context.Background(), "| Revenue | 1 |")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"Particulars", "FY26", "FY25"}, records[0].Keys())
	assert.Equal(t, domain.Int(123456), records[0].Value("FY26"))
	assert.Equal(t, domain.Float(120000.5), records[0].Value("FY25"))
	assert.True(t, records[1].Value("FY26").IsNull())
	assert.Equal(t, domain.String("122000"), records[1].Value("FY25"))
	assert.Contains(t, gen.prompt, "| Revenue | 1 |")
}

func TestGeminiUnparseableOutputYieldsNoRows(t *testing.T) {
	gen := &stubGenerator{text: `{"error": "no statement"}`}
	records, err := newStubExtractor(gen).ExtractRecords(context.Background(), "text")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGeminiGeneratorError(t *testing.T) {
	gen := &stubGenerator{err: errors.Join(ErrExtractionFailed, errors.New("quota"))}
	_, err := newStubExtractor(gen).ExtractRecords(context.Background(), "text")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestGeminiNotConfigured(t *testing.T) {
	e := NewGeminiExtractor(config.Default().Extraction, discardLogger())
	assert.False(t, e.Configured())

	_, err := e.ExtractRecords(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("| Particulars | FY25 |")
	assert.Contains(t, p, "RAW TEXT:\n| Particulars | FY25 |")
	assert.NotContains(t, p, "{{DOCUMENT}}")
}
