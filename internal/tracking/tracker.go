package tracking

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"storefront/internal/logging"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	EventAddToCart        = "AddToCart"
	EventInitiateCheckout = "InitiateCheckout"
	EventPurchase         = "Purchase"
)

// Event is one analytics event.
type Event struct {
	Name        string          `json:"event_name"`
	EventID     string          `json:"event_id"`
	ContentIDs  []string        `json:"content_ids"`
	ContentName string          `json:"content_name,omitempty"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency"`
	NumItems    int             `json:"num_items,omitempty"`
}

// key identifies duplicates: the event name plus its salient payload fields.
func (e Event) key() string {
	payload, _ := json.Marshal(struct {
		ContentIDs  []string `json:"content_ids"`
		Value       string   `json:"value"`
		ContentName string   `json:"content_name"`
	}{e.ContentIDs, e.Value.String(), e.ContentName})
	return e.Name + "-" + string(payload)
}

// Sink delivers events.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// Tracker de-duplicates events before handing them to a sink.
type Tracker struct {
	dedup    *Deduper
	sink     Sink
	currency string
	logger   *zap.Logger
}

// New builds a Tracker that drops repeats inside window.
func New(sink Sink, window time.Duration, logger *zap.Logger) *Tracker {
	return NewWithDeduper(sink, NewDeduper(window), logger)
}

// NewWithDeduper builds a Tracker around an existing Deduper.
func NewWithDeduper(sink Sink, dedup *Deduper, logger *zap.Logger) *Tracker {
	return &Tracker{
		dedup:    dedup,
		sink:     sink,
		currency: "BDT",
		logger:   logging.OrNop(logger),
	}
}

// Track sends e unless an identical event went out inside the window. It
// reports whether the event was sent. Sink failures are logged, never returned.
func (t *Tracker) Track(ctx context.Context, e Event) bool {
	if t == nil || t.sink == nil {
		return false
	}
	if !t.dedup.Allow(e.key()) {
		t.logger.Debug("duplicate event suppressed", zap.String("event", e.Name))
		return false
	}
	if strings.TrimSpace(e.EventID) == "" {
		e.EventID = uuid.NewString()
	}
	if e.Currency == "" {
		e.Currency = t.currency
	}
	if e.ContentIDs == nil {
		e.ContentIDs = []string{}
	}
	if err := t.sink.Send(ctx, e); err != nil {
		t.logger.Warn("tracking sink failed", zap.String("event", e.Name), zap.Error(err))
		return false
	}
	return true
}

// LogSink writes events to the log.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Send(_ context.Context, e Event) error {
	logging.OrNop(s.Logger).Info("tracking event",
		zap.String("event", e.Name),
		zap.String("event_id", e.EventID),
		zap.Strings("content_ids", e.ContentIDs),
		zap.String("value", e.Value.StringFixed(2)),
		zap.String("currency", e.Currency),
	)
	return nil
}
