package services

import (
	"context"
	"io"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

// DocumentParser converts a stored document into markdown text.
type DocumentParser interface {
	ParseDocument(ctx context.Context, path string) (string, error)
	Configured() bool
}

// RecordExtractor reads statement rows out of markdown text.
type RecordExtractor interface {
	ExtractRecords(ctx context.Context, markdown string) ([]domain.Record, error)
	Configured() bool
}

// WorkbookEncoder renders normalized records as a spreadsheet.
type WorkbookEncoder interface {
	Encode(records []domain.Record, numeric []string) ([]byte, error)
}

// UploadStore keeps an upload on disk for the duration of a request.
type UploadStore interface {
	Save(r io.Reader, ext string) (string, error)
	Remove(path string) error
}

// ProgressPublisher receives conversion progress events.
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, p events.ConversionProgress)
}

// NopPublisher drops every event.
type NopPublisher struct{}

// PublishProgress implements ProgressPublisher.
func (NopPublisher) PublishProgress(context.Context, events.ConversionProgress) {}
