package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Task sources recorded on rota_tasks_created_total.
const (
	SourceDirect     = "direct"
	SourceRecurring  = "recurring"
	SourceResolution = "resolution"
)

var (
	initMetricsOnce sync.Once

	tasksCreated      metric.Int64Counter
	conflictsRaised   metric.Int64Counter
	conflictsResolved metric.Int64Counter
	reconflicts       metric.Int64Counter
	tickFailures      metric.Int64Counter
	tickDuration      metric.Float64Histogram
	httpRequests      metric.Int64Counter
	httpDuration      metric.Float64Histogram
)

// InitMetrics creates the meter instruments. Safe to call multiple times; only runs once.
// Until it is called every Record function is a no-op.
func InitMetrics(ctx context.Context) error {
	var err error
	initMetricsOnce.Do(func() {
		m := Meter()
		if tasksCreated, err = m.Int64Counter("rota_tasks_created_total",
			metric.WithDescription("Task instances created, by source")); err != nil {
			return
		}
		if conflictsRaised, err = m.Int64Counter("rota_conflicts_raised_total",
			metric.WithDescription("Conflict notifications raised, by type")); err != nil {
			return
		}
		if conflictsResolved, err = m.Int64Counter("rota_conflicts_resolved_total",
			metric.WithDescription("Conflict notifications resolved, by action")); err != nil {
			return
		}
		if reconflicts, err = m.Int64Counter("rota_conflict_resolution_rejections_total",
			metric.WithDescription("Resolution attempts rejected because the target was not staffed")); err != nil {
			return
		}
		if tickFailures, err = m.Int64Counter("rota_recurrence_tick_failures_total",
			metric.WithDescription("Templates that failed during a recurrence tick")); err != nil {
			return
		}
		if tickDuration, err = m.Float64Histogram("rota_recurrence_tick_duration_seconds",
			metric.WithDescription("Recurrence tick duration in seconds"), metric.WithUnit("s")); err != nil {
			return
		}
		if httpRequests, err = m.Int64Counter("rota_http_requests_total",
			metric.WithDescription("HTTP requests served")); err != nil {
			return
		}
		httpDuration, err = m.Float64Histogram("rota_http_request_duration_seconds",
			metric.WithDescription("HTTP request duration in seconds"), metric.WithUnit("s"))
	})
	return err
}

// RecordTaskCreated records one created task instance.
func RecordTaskCreated(ctx context.Context, source string) {
	if tasksCreated == nil {
		return
	}
	tasksCreated.Add(ctx, 1, metric.WithAttributes(AttrSource.String(source)))
}

// RecordConflictRaised records one new conflict notification.
func RecordConflictRaised(ctx context.Context, notificationType string) {
	if conflictsRaised == nil {
		return
	}
	conflictsRaised.Add(ctx, 1, metric.WithAttributes(AttrType.String(notificationType)))
}

// RecordConflictResolved records a successful resolution.
func RecordConflictResolved(ctx context.Context, action string) {
	if conflictsResolved == nil {
		return
	}
	conflictsResolved.Add(ctx, 1, metric.WithAttributes(AttrAction.String(action)))
}

// RecordResolutionRejected records a resolution attempt that hit another conflict.
func RecordResolutionRejected(ctx context.Context, action string) {
	if reconflicts == nil {
		return
	}
	reconflicts.Add(ctx, 1, metric.WithAttributes(AttrAction.String(action)))
}

// RecordTick records a finished recurrence tick and its failed templates.
func RecordTick(ctx context.Context, duration time.Duration, failures int) {
	if tickDuration != nil {
		tickDuration.Record(ctx, duration.Seconds())
	}
	if tickFailures != nil && failures > 0 {
		tickFailures.Add(ctx, int64(failures))
	}
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		AttrMethod.String(method),
		AttrRoute.String(route),
		attribute.Int(string(AttrStatus), status),
	)
	if httpRequests != nil {
		httpRequests.Add(ctx, 1, attrs)
	}
	if httpDuration != nil {
		httpDuration.Record(ctx, duration.Seconds(), attrs)
	}
}
