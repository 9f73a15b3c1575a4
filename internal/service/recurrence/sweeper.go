package recurrence

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepTimeout bounds a single background tick.
const DefaultSweepTimeout = 2 * time.Minute

// Sweeper runs Tick on a cron schedule so occurrences are materialized even
// when no request arrives. Lazy ticks on requests still happen; both paths
// are safe to run concurrently.
type Sweeper struct {
	ticker  Ticker
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

// NewSweeper parses schedule (standard five-field cron, optional seconds
// field, or a descriptor such as "@every 5m") and registers the tick job.
// The sweeper does nothing until Start is called.
func NewSweeper(ticker Ticker, schedule string, loc *time.Location, logger *slog.Logger) (*Sweeper, error) {
	if ticker == nil {
		return nil, fmt.Errorf("ticker cannot be nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}

	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	s := &Sweeper{
		ticker:  ticker,
		timeout: DefaultSweepTimeout,
		logger:  logger.With(slog.String("component", "recurrence_sweeper")),
	}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("recurrence sweeper started")
}

// Stop prevents further runs and waits for a running tick to finish or ctx to end.
func (s *Sweeper) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("recurrence sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.RunOnce(ctx)
}

// RunOnce performs one tick, logging the outcome. Panics are recovered so a
// faulty tick cannot stop the schedule.
func (s *Sweeper) RunOnce(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in recurrence sweep",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	result, err := s.ticker.Tick(ctx)
	if err != nil {
		s.logger.Error("recurrence sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("recurrence sweep finished",
		slog.Int("materialized", len(result.Materialized)),
		slog.Int("conflicts", len(result.Conflicts)),
		slog.Int("failures", len(result.Failures)))
}
