package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/kmarankit/Money-Stories-Final/internal/dataprocessing"
	"github.com/kmarankit/Money-Stories-Final/internal/extraction"
	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

// Messages returned in the report envelope when no statement was found.
const (
	NoDataMessage     = "No financial data found in PDF. Ensure it contains a Profit & Loss statement."
	NoDataTextMessage = "No financial data found in the supplied text. Ensure it contains a Profit & Loss statement."
)

// Provider names used in extraction error metrics.
const (
	providerLlamaParse = "llamaparse"
	providerGemini     = "gemini"
)

// ReportServiceOptions holds the collaborators of a ReportService.
// Encoder is required; the rest may be nil.
type ReportServiceOptions struct {
	Parser    DocumentParser
	Extractor RecordExtractor
	Encoder   WorkbookEncoder
	Store     UploadStore
	Publisher ProgressPublisher
	Mode      domain.ExtractionMode
	Tracer    trace.Tracer
	Metrics   *infrastructure.BusinessMetrics
	Logger    *slog.Logger
}

// ReportService converts documents into report envelopes.
type ReportService struct {
	parser    DocumentParser
	extractor RecordExtractor
	encoder   WorkbookEncoder
	store     UploadStore
	publisher ProgressPublisher
	mode      domain.ExtractionMode
	tracer    trace.Tracer
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
}

// UploadInput is a document received over HTTP.
type UploadInput struct {
	Filename string
	Body     io.Reader
}

// ConvertInput is markdown supplied directly by a client.
type ConvertInput struct {
	Text     string
	Filename string
	// Mode overrides the configured extraction mode when set.
	Mode domain.ExtractionMode
}

// conversion carries the per-request facts shared by every stage.
type conversion struct {
	requestID string
	filename  string
	source    string
	mode      domain.ExtractionMode // effective mode, after any request override
	start     time.Time
}

// NewReportService creates a report service.
func NewReportService(opts ReportServiceOptions) (*ReportService, error) {
	if opts.Encoder == nil {
		return nil, fmt.Errorf("workbook encoder is required")
	}
	if opts.Mode == "" {
		opts.Mode = domain.ExtractionModeAuto
	}
	if !opts.Mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, opts.Mode)
	}
	if opts.Publisher == nil {
		opts.Publisher = NopPublisher{}
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &ReportService{
		parser:    opts.Parser,
		extractor: opts.Extractor,
		encoder:   opts.Encoder,
		store:     opts.Store,
		publisher: opts.Publisher,
		mode:      opts.Mode,
		tracer:    opts.Tracer,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With(slog.String("component", "report_service")),
	}, nil
}

// Mode returns the configured extraction mode.
func (s *ReportService) Mode() domain.ExtractionMode {
	return s.mode
}

// ProcessUpload stores the document, parses it to markdown and converts it.
// The stored file is removed before returning, whatever the outcome.
func (s *ReportService) ProcessUpload(ctx context.Context, in UploadInput) (*domain.ReportResponse, error) {
	if in.Body == nil {
		return nil, ErrNoDocument
	}
	if s.store == nil {
		return nil, ErrNoStore
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	conv := conversion{
		requestID: infrastructure.GetTraceID(ctx),
		filename:  in.Filename,
		source:    "upload",
		mode:      s.mode,
		start:     time.Now(),
	}

	ctx, span := s.tracer.Start(ctx, "report.process_upload",
		trace.WithAttributes(
			attribute.String("request.id", conv.requestID),
			attribute.String("document.filename", in.Filename),
		),
	)
	defer span.End()

	s.logger.InfoContext(ctx, "Received file", slog.String("filename", in.Filename))
	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageReceived, Message: "File received"})

	if s.parser == nil {
		return nil, s.fail(ctx, conv, fmt.Errorf("%w: no document parser", extraction.ErrNotConfigured))
	}

	path, err := s.store.Save(in.Body, filepath.Ext(in.Filename))
	if err != nil {
		return nil, s.fail(ctx, conv, fmt.Errorf("store upload: %w", err))
	}
	defer func() {
		if err := s.store.Remove(path); err != nil {
			s.logger.WarnContext(ctx, "Temporary file not deleted",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return
		}
		s.logger.DebugContext(ctx, "Temporary file deleted", slog.String("path", path))
	}()

	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageParsing, Message: "Parsing document"})
	markdown, err := s.parser.ParseDocument(ctx, path)
	if err != nil {
		infrastructure.RecordExtractionError(ctx, s.metrics, providerLlamaParse)
		return nil, s.fail(ctx, conv, fmt.Errorf("parse document: %w", err))
	}
	infrastructure.AddSpanEvent(ctx, "document.parsed", attribute.Int("markdown.bytes", len(markdown)))

	return s.convert(ctx, conv, markdown, NoDataMessage)
}

// ConvertText runs the conversion on markdown supplied by the caller.
func (s *ReportService) ConvertText(ctx context.Context, in ConvertInput) (*domain.ReportResponse, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}
	mode := s.mode
	if in.Mode != "" {
		if !in.Mode.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMode, in.Mode)
		}
		mode = in.Mode
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	conv := conversion{
		requestID: infrastructure.GetTraceID(ctx),
		filename:  in.Filename,
		source:    "text",
		mode:      mode,
		start:     time.Now(),
	}

	ctx, span := s.tracer.Start(ctx, "report.convert_text",
		trace.WithAttributes(
			attribute.String("request.id", conv.requestID),
			attribute.String("extraction.mode", string(mode)),
			attribute.Int("text.bytes", len(in.Text)),
		),
	)
	defer span.End()

	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageReceived, Message: "Text received"})
	return s.convert(ctx, conv, in.Text, NoDataTextMessage)
}

func (s *ReportService) convert(ctx context.Context, conv conversion, markdown string, noData string) (*domain.ReportResponse, error) {
	res, source, err := s.extract(ctx, conv, markdown)
	if err != nil {
		return nil, s.fail(ctx, conv, err)
	}

	s.publish(ctx, conv, events.ConversionProgress{
		Stage:          events.StageNormalizing,
		Message:        "Normalizing values",
		Classification: res.Classification.String(),
		TablesFound:    res.TablesFound,
		Records:        len(res.Records),
	})

	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageEncoding, Message: "Building workbook"})
	data, err := s.encoder.Encode(res.Records, res.NumericColumns)
	if err != nil {
		return nil, s.fail(ctx, conv, fmt.Errorf("encode workbook: %w", err))
	}
	buf := base64.StdEncoding.EncodeToString(data)

	resp := &domain.ReportResponse{
		ExcelBuffer: &buf,
		Source:      source,
		RequestID:   conv.requestID,
	}
	outcome := "success"
	if res.HasData() {
		resp.Success = true
		resp.FinancialData = domain.NewFinancialData(res.Tables()...)
		resp.Classification = res.Classification
		resp.Message = fmt.Sprintf("Extracted %d rows", len(res.Records))
	} else {
		outcome = "no_data"
		resp.FinancialData = domain.NewFinancialData()
		resp.Message = noData
		s.logger.WarnContext(ctx, "No financial data extracted",
			slog.String("filename", conv.filename),
			slog.Int("tables_found", res.TablesFound))
	}

	infrastructure.RecordConversionMetrics(ctx, s.metrics, infrastructure.ConversionObservation{
		Source:   string(source),
		Outcome:  outcome,
		Duration: time.Since(conv.start),
		Tables:   res.TablesFound,
		Records:  len(res.Records),
		Bytes:    len(data),
	})
	s.publish(ctx, conv, events.ConversionProgress{
		Stage:          events.StageCompleted,
		Message:        resp.Message,
		Classification: res.Classification.String(),
		TablesFound:    res.TablesFound,
		Records:        len(res.Records),
	})

	s.logger.InfoContext(ctx, "Conversion completed",
		slog.String("filename", conv.filename),
		slog.String("source", string(source)),
		slog.String("outcome", outcome),
		slog.Int("records", len(res.Records)),
		slog.Int("workbook_bytes", len(data)),
		slog.Duration("duration", time.Since(conv.start)))
	return resp, nil
}

// extract picks rows out of markdown according to conv.mode. In auto mode
// the structured extractor is only consulted when the heuristic path selects
// no table and the extractor is configured.
func (s *ReportService) extract(ctx context.Context, conv conversion, markdown string) (dataprocessing.Result, domain.ExtractionMode, error) {
	switch conv.mode {
	case domain.ExtractionModeLLM:
		res, err := s.extractStructured(ctx, conv, markdown)
		return res, domain.ExtractionModeLLM, err
	case domain.ExtractionModeHeuristic:
		res, err := s.extractHeuristic(ctx, conv, markdown)
		return res, domain.ExtractionModeHeuristic, err
	}

	res, err := s.extractHeuristic(ctx, conv, markdown)
	if err != nil || res.HasData() {
		return res, domain.ExtractionModeHeuristic, err
	}
	if s.extractor == nil || !s.extractor.Configured() {
		return res, domain.ExtractionModeHeuristic, nil
	}

	s.logger.InfoContext(ctx, "No statement table found, falling back to structured extraction",
		slog.Int("tables_found", res.TablesFound))
	llmRes, err := s.extractStructured(ctx, conv, markdown)
	if err != nil {
		return dataprocessing.Result{}, domain.ExtractionModeLLM, err
	}
	// Keep the heuristic table count so metrics show what the text held.
	if llmRes.TablesFound < res.TablesFound {
		llmRes.TablesFound = res.TablesFound
	}
	return llmRes, domain.ExtractionModeLLM, nil
}

func (s *ReportService) extractHeuristic(ctx context.Context, conv conversion, markdown string) (dataprocessing.Result, error) {
	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageSegmenting, Message: "Finding tables"})

	res, err := dataprocessing.ProcessText(markdown)
	if err != nil {
		return res, fmt.Errorf("process text: %w", err)
	}
	infrastructure.AddSpanEvent(ctx, "tables.selected",
		attribute.Int("tables.found", res.TablesFound),
		attribute.String("classification", res.Classification.String()),
		attribute.Int("records", len(res.Records)))
	return res, nil
}

func (s *ReportService) extractStructured(ctx context.Context, conv conversion, markdown string) (dataprocessing.Result, error) {
	if s.extractor == nil {
		return dataprocessing.Result{}, fmt.Errorf("%w: no structured extractor", extraction.ErrNotConfigured)
	}
	s.publish(ctx, conv, events.ConversionProgress{Stage: events.StageExtracting, Message: "Extracting statement rows"})

	records, err := s.extractor.ExtractRecords(ctx, markdown)
	if err != nil {
		infrastructure.RecordExtractionError(ctx, s.metrics, providerGemini)
		return dataprocessing.Result{}, fmt.Errorf("extract records: %w", err)
	}
	return dataprocessing.ProcessRecords(records), nil
}

func (s *ReportService) fail(ctx context.Context, conv conversion, err error) error {
	infrastructure.RecordError(ctx, err)
	infrastructure.RecordConversionMetrics(ctx, s.metrics, infrastructure.ConversionObservation{
		Source:   string(conv.mode),
		Outcome:  "error",
		Duration: time.Since(conv.start),
	})
	s.publish(ctx, conv, events.ConversionProgress{
		Stage:   events.StageFailed,
		Message: "Conversion failed",
		Error:   err.Error(),
	})
	s.logger.ErrorContext(ctx, "Conversion failed",
		slog.String("filename", conv.filename),
		slog.String("source", conv.source),
		slog.String("error", err.Error()))
	return err
}

func (s *ReportService) publish(ctx context.Context, conv conversion, p events.ConversionProgress) {
	p.RequestID = conv.requestID
	p.Filename = conv.filename
	s.publisher.PublishProgress(ctx, p)
}
