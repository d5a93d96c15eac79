package websocket

import (
	"errors"
	"sync"
	"time"
)

// MockConnection is a mock implementation of the Connection interface for testing
type MockConnection struct {
	mu sync.Mutex

	WrittenMessages []MockMessage
	WriteErr        error

	// reads blocks ReadMessage until a message is queued or Close is called.
	reads  chan MockMessage
	closed chan struct{}
	once   sync.Once

	ReadDeadline  time.Time
	WriteDeadline time.Time
	PongHandler   func(string) error
	ReadLimit     int64
	RemoteAddress string
}

// MockMessage represents a message for mocking
type MockMessage struct {
	Type int
	Data []byte
	Err  error
}

func NewMockConnection() *MockConnection {
	return &MockConnection{
		reads:         make(chan MockMessage, 16),
		closed:        make(chan struct{}),
		RemoteAddress: "127.0.0.1:8080",
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isClosed() {
		return errors.New("connection closed")
	}
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.WrittenMessages = append(m.WrittenMessages, MockMessage{Type: messageType, Data: data})
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	select {
	case msg := <-m.reads:
		return msg.Type, msg.Data, msg.Err
	case <-m.closed:
		return 0, nil, errors.New("connection closed")
	}
}

func (m *MockConnection) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

func (m *MockConnection) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// Closed reports whether Close has been called.
func (m *MockConnection) Closed() bool { return m.isClosed() }

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadDeadline = t
	return nil
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WriteDeadline = t
	return nil
}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReadLimit = limit
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PongHandler = h
}

func (m *MockConnection) RemoteAddr() string {
	return m.RemoteAddress
}

// AddReadMessage queues a message for ReadMessage.
func (m *MockConnection) AddReadMessage(messageType int, data []byte, err error) {
	m.reads <- MockMessage{Type: messageType, Data: data, Err: err}
}

// GetWrittenMessages returns all messages written to the connection
func (m *MockConnection) GetWrittenMessages() []MockMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockMessage, len(m.WrittenMessages))
	copy(result, m.WrittenMessages)
	return result
}
