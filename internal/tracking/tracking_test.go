package tracking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type recordingSink struct {
	events []Event
	err    error
}

func (s *recordingSink) Send(_ context.Context, e Event) error {
	s.events = append(s.events, e)
	return s.err
}

func TestDeduperWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := NewDeduper(2 * time.Second)
	d.now = clock.now

	if !d.Allow("a") {
		t.Fatalf("first send must pass")
	}
	clock.advance(time.Second)
	if d.Allow("a") {
		t.Fatalf("repeat inside window must be suppressed")
	}
	if !d.Allow("b") {
		t.Fatalf("different key must pass")
	}
	clock.advance(2 * time.Second)
	if !d.Allow("a") {
		t.Fatalf("repeat after window must pass")
	}
}

func TestDeduperSweepsOldEntries(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	d := NewDeduper(2 * time.Second)
	d.now = clock.now

	for i := 0; i < sweepThreshold; i++ {
		d.Allow(fmt.Sprintf("old-%d", i))
	}
	clock.advance(11 * time.Second)
	d.Allow("fresh")
	if got := d.Len(); got != 1 {
		t.Fatalf("expected only the fresh key after sweep, got %d", got)
	}
}

func TestTrackerSuppressesDuplicates(t *testing.T) {
	sink := &recordingSink{}
	tr := New(sink, 2*time.Second, nil)
	ev := Event{Name: EventAddToCart, ContentIDs: []string{"10"}, Value: decimal.NewFromInt(500)}

	if !tr.Track(context.Background(), ev) {
		t.Fatalf("expected first event sent")
	}
	if tr.Track(context.Background(), ev) {
		t.Fatalf("expected duplicate suppressed")
	}
	other := ev
	other.Value = decimal.NewFromInt(1000)
	if !tr.Track(context.Background(), other) {
		t.Fatalf("expected event with different value sent")
	}
	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if sink.events[0].EventID == "" || sink.events[0].Currency != "BDT" {
		t.Fatalf("expected defaults filled, got %+v", sink.events[0])
	}
}

func TestTrackerSinkFailure(t *testing.T) {
	sink := &recordingSink{err: errors.New("down")}
	tr := New(sink, time.Second, nil)
	if tr.Track(context.Background(), Event{Name: EventPurchase}) {
		t.Fatalf("expected failed delivery to report false")
	}
}

func TestNilTracker(t *testing.T) {
	var tr *Tracker
	if tr.Track(context.Background(), Event{Name: EventPurchase}) {
		t.Fatalf("nil tracker must not send")
	}
}
