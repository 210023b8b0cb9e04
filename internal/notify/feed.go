package notify

import (
	"sync"
	"time"

	"storefront/internal/logging"

	"go.uber.org/zap"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier reports outcomes to the shopper.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Feed logs notifications and buffers the most recent ones until a view drains them.
type Feed struct {
	mu     sync.Mutex
	items  []Notification
	max    int
	logger *zap.Logger
	now    func() time.Time
}

// NewFeed keeps at most max undrained notifications, dropping the oldest.
func NewFeed(max int, logger *zap.Logger) *Feed {
	if max <= 0 {
		max = 20
	}
	return &Feed{max: max, logger: logging.OrNop(logger), now: time.Now}
}

func (f *Feed) Success(msg string) {
	f.logger.Info("notify", zap.String("level", string(LevelSuccess)), zap.String("message", msg))
	f.push(LevelSuccess, msg)
}

func (f *Feed) Error(msg string) {
	f.logger.Warn("notify", zap.String("level", string(LevelError)), zap.String("message", msg))
	f.push(LevelError, msg)
}

// Drain returns and clears the buffered notifications, oldest first.
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

func (f *Feed) push(level Level, msg string) {
	if msg == "" {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, Notification{Level: level, Message: msg, At: f.now()})
	if len(f.items) > f.max {
		f.items = append([]Notification(nil), f.items[len(f.items)-f.max:]...)
	}
}

// Discard drops every notification.
type Discard struct{}

func (Discard) Success(string) {}
func (Discard) Error(string)   {}
