package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kmarankit/Money-Stories-Final/internal/config"
)

// Job states reported by the parsing API.
const (
	JobPending        = "PENDING"
	JobSuccess        = "SUCCESS"
	JobPartialSuccess = "PARTIAL_SUCCESS"
	JobError          = "ERROR"
	JobCanceled       = "CANCELED"
)

const maxErrorBody = 512

// LlamaParseClient converts documents to markdown with the LlamaParse API.
type LlamaParseClient struct {
	apiKey       string
	baseURL      string
	premium      bool
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// LlamaParseOption configures a LlamaParseClient.
type LlamaParseOption func(*LlamaParseClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) LlamaParseOption {
	return func(l *LlamaParseClient) { l.httpClient = c }
}

// NewLlamaParseClient creates a client from the extraction config.
func NewLlamaParseClient(cfg config.ExtractionConfig, logger *slog.Logger, opts ...LlamaParseOption) *LlamaParseClient {
	if logger == nil {
		logger = slog.Default()
	}
	c := &LlamaParseClient{
		apiKey:       cfg.LlamaCloudAPIKey,
		baseURL:      strings.TrimRight(cfg.LlamaParseBaseURL, "/"),
		premium:      cfg.PremiumMode,
		pollInterval: cfg.PollInterval,
		timeout:      cfg.ParseTimeout,
		httpClient:   &http.Client{},
		logger:       logger.With(slog.String("component", "llamaparse")),
	}
	if c.pollInterval <= 0 {
		c.pollInterval = 2 * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *LlamaParseClient) Configured() bool {
	return c.apiKey != ""
}

type jobResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error_message,omitempty"`
}

type markdownResponse struct {
	Markdown string `json:"markdown"`
}

// ParseDocument uploads the file at path, waits for the parse job and returns
// its markdown.
func (c *LlamaParseClient) ParseDocument(ctx context.Context, path string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("%w: LLAMA_CLOUD_API_KEY not set", ErrNotConfigured)
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	jobID, err := c.upload(ctx, path)
	if err != nil {
		return "", err
	}
	c.logger.InfoContext(ctx, "parse job submitted",
		slog.String("job_id", jobID),
		slog.String("file", filepath.Base(path)))

	if err := c.waitForJob(ctx, jobID); err != nil {
		return "", err
	}

	var result markdownResponse
	if err := c.getJSON(ctx, "/api/parsing/job/"+jobID+"/result/markdown", &result); err != nil {
		return "", fmt.Errorf("fetch markdown for job %s: %w", jobID, err)
	}

	c.logger.InfoContext(ctx, "parse job completed",
		slog.String("job_id", jobID),
		slog.Int("markdown_bytes", len(result.Markdown)),
		slog.Duration("duration", time.Since(start)))
	return result.Markdown, nil
}

func (c *LlamaParseClient) upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy document: %w", err)
	}
	if c.premium {
		if err := mw.WriteField("premium_mode", "true"); err != nil {
			return "", fmt.Errorf("write form field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/parsing/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var job jobResponse
	if err := c.do(req, &job); err != nil {
		return "", fmt.Errorf("upload document: %w", err)
	}
	if job.ID == "" {
		return "", fmt.Errorf("upload document: %w: response carried no job id", ErrExtractionFailed)
	}
	return job.ID, nil
}

// waitForJob polls the job status, paced by a limiter, until it leaves the
// pending state or ctx ends.
func (c *LlamaParseClient) waitForJob(ctx context.Context, jobID string) error {
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)
	polls := 0
	for {
		if err := limiter.Wait(ctx); err != nil {
			// The limiter refuses early when the next poll would miss the deadline.
			if ctx.Err() == nil {
				return fmt.Errorf("wait for job %s after %d polls: %w: %v", jobID, polls, context.DeadlineExceeded, err)
			}
			return fmt.Errorf("wait for job %s after %d polls: %w", jobID, polls, ctx.Err())
		}
		polls++

		var job jobResponse
		if err := c.getJSON(ctx, "/api/parsing/job/"+jobID, &job); err != nil {
			return fmt.Errorf("poll job %s: %w", jobID, err)
		}

		switch strings.ToUpper(job.Status) {
		case JobSuccess, JobPartialSuccess:
			return nil
		case JobError, JobCanceled:
			msg := job.Error
			if msg == "" {
				msg = "no detail"
			}
			return fmt.Errorf("job %s %s: %w: %s", jobID, strings.ToLower(job.Status), ErrExtractionFailed, msg)
		default:
			c.logger.DebugContext(ctx, "parse job pending",
				slog.String("job_id", jobID),
				slog.String("status", job.Status),
				slog.Int("polls", polls))
		}
	}
}

func (c *LlamaParseClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *LlamaParseClient) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: status %d: %s", ErrExtractionFailed, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrExtractionFailed, err)
	}
	return nil
}
