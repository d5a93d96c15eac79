package services

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/domain"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

// MockDocumentParser is a mock for the DocumentParser interface
type MockDocumentParser struct {
	mock.Mock
}

func (m *MockDocumentParser) ParseDocument(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentParser) Configured() bool {
	return m.Called().Bool(0)
}

// MockRecordExtractor is a mock for the RecordExtractor interface
type MockRecordExtractor struct {
	mock.Mock
}

func (m *MockRecordExtractor) ExtractRecords(ctx context.Context, markdown string) ([]domain.Record, error) {
	args := m.Called(ctx, markdown)
	records, _ := args.Get(0).([]domain.Record)
	return records, args.Error(1)
}

func (m *MockRecordExtractor) Configured() bool {
	return m.Called().Bool(0)
}

// MockUploadStore is a mock for the UploadStore interface
type MockUploadStore struct {
	mock.Mock
}

func (m *MockUploadStore) Save(r io.Reader, ext string) (string, error) {
	args := m.Called(r, ext)
	return args.String(0), args.Error(1)
}

func (m *MockUploadStore) Remove(path string) error {
	return m.Called(path).Error(0)
}

// RecordingPublisher keeps every progress event it receives.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.ConversionProgress
}

func (p *RecordingPublisher) PublishProgress(_ context.Context, ev events.ConversionProgress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
}

// Stages returns the stage of each recorded event in order.
func (p *RecordingPublisher) Stages() []events.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	stages := make([]events.Stage, len(p.Events))
	for i, ev := range p.Events {
		stages[i] = ev.Stage
	}
	return stages
}
