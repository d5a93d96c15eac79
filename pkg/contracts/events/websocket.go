// Package events contains the WebSocket message contracts for conversion progress.
package events

import (
	"time"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConversionProgress carries a ConversionProgress payload
	MessageTypeConversionProgress MessageType = "conversion:progress"

	// Connection messages
	MessageTypeConnect MessageType = "connect"
	MessageTypeError   MessageType = "error"
)

// Stage names a step of a conversion.
type Stage string

const (
	StageReceived    Stage = "received"
	StageParsing     Stage = "parsing"
	StageExtracting  Stage = "extracting"
	StageSegmenting  Stage = "segmenting"
	StageNormalizing Stage = "normalizing"
	StageEncoding    Stage = "encoding"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
)

// stageProgress is the percentage reported when a stage starts.
var stageProgress = map[Stage]int{
	StageReceived:    0,
	StageParsing:     10,
	StageExtracting:  40,
	StageSegmenting:  60,
	StageNormalizing: 75,
	StageEncoding:    90,
	StageCompleted:   100,
	StageFailed:      100,
}

// Progress returns the nominal completion percentage of s.
func (s Stage) Progress() int {
	return stageProgress[s]
}

// Terminal reports whether no further events follow s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// BaseMessage represents the base structure for all WebSocket messages
type BaseMessage struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// WebSocketMessage represents a complete WebSocket message
type WebSocketMessage struct {
	BaseMessage
	Data interface{} `json:"data,omitempty"`
}

// ConversionProgress reports how far a single conversion has come.
type ConversionProgress struct {
	RequestID      string `json:"request_id"`
	Filename       string `json:"filename,omitempty"`
	Stage          Stage  `json:"stage"`
	Progress       int    `json:"progress"`
	Message        string `json:"message,omitempty"`
	Classification string `json:"classification,omitempty"`
	TablesFound    int    `json:"tables_found,omitempty"`
	Records        int    `json:"records,omitempty"`
	Error          string `json:"error,omitempty"`
}

// NewProgressMessage wraps p in a timestamped WebSocket message.
func NewProgressMessage(p ConversionProgress) WebSocketMessage {
	if p.Progress == 0 {
		p.Progress = p.Stage.Progress()
	}
	return WebSocketMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeConversionProgress,
			Timestamp: time.Now().UTC(),
			TraceID:   p.RequestID,
		},
		Data: p,
	}
}
