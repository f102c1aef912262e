package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notifier delivers user-facing acknowledgements of mutations
type Notifier interface {
	Success(message string)
	Failure(message string)
}

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is one toast shown to the operator
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Feed keeps the most recent notifications until a presentation surface drains them
type Feed struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// NewFeed creates a feed that retains at most limit notifications
func NewFeed(limit int) *Feed {
	if limit <= 0 {
		limit = 50
	}
	return &Feed{limit: limit}
}

func (f *Feed) Success(message string) { f.push(LevelSuccess, message) }
func (f *Feed) Failure(message string) { f.push(LevelError, message) }

func (f *Feed) push(level Level, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      now(),
	})
	if over := len(f.items) - f.limit; over > 0 {
		f.items = append([]Notification(nil), f.items[over:]...)
	}
}

// Drain returns pending notifications oldest first and empties the feed
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Notifiers fans a notification out to every member
type Notifiers []Notifier

func (ns Notifiers) Success(message string) {
	for _, n := range ns {
		n.Success(message)
	}
}

func (ns Notifiers) Failure(message string) {
	for _, n := range ns {
		n.Failure(message)
	}
}

// NoticeError is a failure whose operator-facing message has already been notified
type NoticeError struct {
	Message string
	Err     error
}

func (e *NoticeError) Error() string { return e.Err.Error() }
func (e *NoticeError) Unwrap() error { return e.Err }

// NoticeMessage returns the message notified for err, or fallback
func NoticeMessage(err error, fallback string) string {
	var notice *NoticeError
	if errors.As(err, &notice) {
		return notice.Message
	}
	return fallback
}

// LogNotifier writes notifications to the process log
type LogNotifier struct{}

func (LogNotifier) Success(message string) { log.Printf("✅ %s", message) }
func (LogNotifier) Failure(message string) { log.Printf("⚠️  %s", message) }
