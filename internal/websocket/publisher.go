package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kmarankit/Money-Stories-Final/internal/infrastructure"
	"github.com/kmarankit/Money-Stories-Final/pkg/contracts/events"
)

// ProgressPublisher turns conversion progress into WebSocket broadcasts.
type ProgressPublisher struct {
	hub    Broadcaster
	logger *slog.Logger
}

// NewProgressPublisher creates a publisher that broadcasts through hub.
func NewProgressPublisher(hub Broadcaster, logger *slog.Logger) *ProgressPublisher {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ProgressPublisher{
		hub:    hub,
		logger: logger.With(slog.String("component", "websocket.publisher")),
	}
}

// PublishProgress broadcasts p to clients watching its request. Delivery is
// best effort and never fails the conversion.
func (p *ProgressPublisher) PublishProgress(ctx context.Context, progress events.ConversionProgress) {
	data, err := json.Marshal(events.NewProgressMessage(progress))
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to encode progress message",
			slog.String("stage", string(progress.Stage)),
			slog.String("error", err.Error()))
		return
	}

	if !p.hub.Broadcast(progress.RequestID, data) {
		p.logger.DebugContext(ctx, "Progress message dropped",
			slog.String("stage", string(progress.Stage)))
	}
}
