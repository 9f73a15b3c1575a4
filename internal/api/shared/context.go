package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/phrazzld/rota-api/internal/domain"
)

// ContextKey is the type of request context keys set by the middleware.
type ContextKey string

const (
	// EmployeeContextKey holds the authenticated *domain.Employee.
	EmployeeContextKey ContextKey = "employee"

	// TraceIDKey holds the request trace ID.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// WithEmployee returns a context carrying the acting employee.
func WithEmployee(ctx context.Context, e *domain.Employee) context.Context {
	return context.WithValue(ctx, EmployeeContextKey, e)
}

// EmployeeFromContext returns the acting employee set by the auth middleware.
func EmployeeFromContext(ctx context.Context) (*domain.Employee, bool) {
	e, ok := ctx.Value(EmployeeContextKey).(*domain.Employee)
	return e, ok && e != nil
}

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

var fallbackCounter atomic.Uint64

// generateTraceID returns 32 hex characters. When crypto/rand fails it falls
// back to the clock plus a process-wide counter, never a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate random trace ID, using fallback",
			"error", err,
			"bytes_read", n)
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

func generateFallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint64(b[8:], fallbackCounter.Add(1))
	return hex.EncodeToString(b)
}
