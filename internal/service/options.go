package service

import (
	"context"
	"time"

	"github.com/phrazzld/rota-api/internal/events"
	"github.com/phrazzld/rota-api/internal/service/recurrence"
)

type options struct {
	ticker  recurrence.Ticker
	emitter events.EventEmitter
	now     func() time.Time
	loc     *time.Location
}

func newOptions(opts []Option) options {
	o := options{now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a service.
type Option func(*options)

// WithTicker runs the recurrence tick at the start of every listing and
// task-mutating operation.
func WithTicker(t recurrence.Ticker) Option {
	return func(o *options) { o.ticker = t }
}

// WithEmitter publishes task.created and conflict.raised events.
func WithEmitter(e events.EventEmitter) Option {
	return func(o *options) { o.emitter = e }
}

// WithClock overrides the clock used for timestamps and "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLocation sets the time zone in which "today" is computed.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// tick runs the configured recurrence tick. Per-template failures are
// reported by the engine itself and do not fail the caller.
func (o options) tick(ctx context.Context) error {
	if o.ticker == nil {
		return nil
	}
	_, err := o.ticker.Tick(ctx)
	return err
}
