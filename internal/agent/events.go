package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event types recorded by the engine.
const (
	EventChatResolved  = "chat_resolved"
	EventQuizGenerated = "quiz_generated"
)

const dbTimeout = 5 * time.Second

// Event represents an analytics event persisted to the events table.
type Event struct {
	ID        uuid.UUID
	RequestID string
	UserID    string
	EventType string
	Data      map[string]any
	CreatedAt time.Time
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// PostgresEventLogger inserts events into the events table.
type PostgresEventLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresEventLogger(pool *pgxpool.Pool) *PostgresEventLogger {
	return &PostgresEventLogger{pool: pool}
}

func (l *PostgresEventLogger) LogEvent(event Event) error {
	if l == nil || l.pool == nil {
		return fmt.Errorf("event logger pool is nil")
	}
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}

	payload := event.Data
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = l.pool.Exec(ctx,
		`INSERT INTO events (id, request_id, user_id, event_type, data, created_at)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5::jsonb, $6)`,
		id,
		event.RequestID,
		event.UserID,
		event.EventType,
		string(data),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	slog.Debug("event logged",
		"type", event.EventType,
		"event_id", id.String(),
		"user_id", event.UserID,
	)
	return nil
}

// ErrEventQueueFull is returned by AsyncEventLogger when its buffer is full.
var ErrEventQueueFull = errors.New("event queue full")

// AsyncEventLogger writes events to another logger on a background
// goroutine so request handling never waits on storage. Delivery failures
// are logged and dropped.
type AsyncEventLogger struct {
	next   EventLogger
	ch     chan Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewAsyncEventLogger starts the writer goroutine. Call Close on shutdown.
func NewAsyncEventLogger(next EventLogger, buffer int) *AsyncEventLogger {
	if buffer <= 0 {
		buffer = 128
	}
	l := &AsyncEventLogger{
		next: next,
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *AsyncEventLogger) run() {
	defer close(l.done)
	for event := range l.ch {
		if err := l.next.LogEvent(event); err != nil {
			slog.Warn("failed to log event", "type", event.EventType, "error", err)
		}
	}
}

func (l *AsyncEventLogger) LogEvent(event Event) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return fmt.Errorf("event logger closed")
	}
	select {
	case l.ch <- event:
		return nil
	default:
		return ErrEventQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be written.
func (l *AsyncEventLogger) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.ch)
	}
	l.mu.Unlock()
	<-l.done
}
