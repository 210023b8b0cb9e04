package checkout

import (
	"context"

	"storefront/internal/notify"
	"storefront/internal/tracking"
)

type eventTracker interface {
	Track(ctx context.Context, e tracking.Event) bool
}

type options struct {
	notifier notify.Notifier
	tracker  eventTracker
}

// Option customizes Coupons and Orders.
type Option func(*options)

// WithNotifier routes user-facing messages.
func WithNotifier(n notify.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithTracker reports checkout and purchase events.
func WithTracker(t eventTracker) Option {
	return func(o *options) { o.tracker = t }
}

func buildOptions(opts []Option) options {
	o := options{notifier: notify.Discard{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = notify.Discard{}
	}
	return o
}
