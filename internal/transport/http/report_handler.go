package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "github.com/kmarankit/Money-Stories-Final/internal/errors"
	"github.com/kmarankit/Money-Stories-Final/internal/middleware"
	"github.com/kmarankit/Money-Stories-Final/internal/services"
	"github.com/kmarankit/Money-Stories-Final/internal/validation"
	api "github.com/kmarankit/Money-Stories-Final/pkg/contracts/api/v1"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
)

const (
	// uploadField is the multipart form field carrying the document.
	uploadField = "file"

	// multipartOverhead is allowed on top of the file limit for headers and
	// boundaries, so an oversize file is reported by the validator.
	multipartOverhead = 1 << 20

	// multipartMemory is kept in memory before parts spill to disk.
	multipartMemory = 8 << 20
)

// ReportProcessor is the part of services.ReportService the handler needs.
type ReportProcessor interface {
	ProcessUpload(ctx context.Context, in services.UploadInput) (*domain.ReportResponse, error)
	ConvertText(ctx context.Context, in services.ConvertInput) (*domain.ReportResponse, error)
}

// ReportHandler serves document uploads and direct text conversions.
type ReportHandler struct {
	service      ReportProcessor
	validator    *validation.FileValidator
	validation   *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	maxTextBytes int64
	logger       *slog.Logger
}

// ReportHandlerOptions groups the ReportHandler collaborators.
type ReportHandlerOptions struct {
	Service      ReportProcessor
	Validator    *validation.FileValidator
	Validation   *middleware.ValidationMiddleware
	ErrorHandler *apierrors.ErrorHandler
	MaxTextBytes int64
	Logger       *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(opts ReportHandlerOptions) *ReportHandler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{
		service:      opts.Service,
		validator:    opts.Validator,
		validation:   opts.Validation,
		errorHandler: opts.ErrorHandler,
		maxTextBytes: opts.MaxTextBytes,
		logger:       logger.With(slog.String("handler", "report")),
	}
}

// RegisterRoutes adds the report routes to r, which is mounted at /api.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Post("/upload", h.Upload)
	r.With(
		h.validation.ContentTypeValidator("application/json"),
		h.validation.MaxBodySize(h.maxTextBytes),
	).Post("/convert", h.Convert)
}

// Upload handles POST /api/upload
func (h *ReportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.validator.MaxBytes()+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, h.validator.TooLarge())
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = services.ErrNoDocument
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer file.Close()

	if err := h.validator.ValidateUpload(header.Filename, header.Size); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.ProcessUpload(r.Context(), services.UploadInput{
		Filename: header.Filename,
		Body:     file,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Upload processed",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Bool("success", resp.Success))
	render.JSON(w, r, resp)
}

// Convert handles POST /api/convert
func (h *ReportHandler) Convert(w http.ResponseWriter, r *http.Request) {
	var req api.ConvertRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp, err := h.service.ConvertText(r.Context(), services.ConvertInput{
		Text:     req.Text,
		Filename: req.Filename,
		Mode:     domain.ExtractionMode(req.Mode),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}
