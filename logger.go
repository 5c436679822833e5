package skyindex

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with skyindex-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithPrototype tags every record with the prototype name.
func (l *Logger) WithPrototype(p Prototype) *Logger {
	return &Logger{
		Logger: l.Logger.With("prototype", p.String()),
	}
}

// LogBuild logs the outcome of building one engine.
func (l *Logger) LogBuild(ctx context.Context, r BuildReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"prototype", r.Prototype.String(),
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "build completed",
		"prototype", r.Prototype.String(),
		"flights", r.Flights,
		"passengers", r.Passengers,
		"reservations", r.Reservations,
		"rejected", r.Rejected,
		"elapsed", r.Total.Round(time.Microsecond),
	)
}

// LogQuery logs a compared query.
func (l *Logger) LogQuery(ctx context.Context, c Comparison) {
	if !c.Agree {
		l.WarnContext(ctx, "prototypes disagree",
			"query", c.Query.String(),
			"baseline", c.Baseline.Duration,
			"optimized", c.Optimized.Duration,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"query", c.Query.String(),
		"baseline", c.Baseline.Duration,
		"optimized", c.Optimized.Duration,
	)
}

// LogBooking logs a validated booking.
func (l *Logger) LogBooking(ctx context.Context, p Prototype, flightID, passengerID int32, err error) {
	if err != nil {
		l.DebugContext(ctx, "booking rejected",
			"prototype", p.String(),
			"flight_id", flightID,
			"passenger_id", passengerID,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "booking accepted",
		"prototype", p.String(),
		"flight_id", flightID,
		"passenger_id", passengerID,
	)
}

// LogValidation logs a capacity validation failure.
func (l *Logger) LogValidation(ctx context.Context, p Prototype, invalid int, err error) {
	if err != nil {
		l.WarnContext(ctx, "capacity validation failed",
			"prototype", p.String(),
			"flights", invalid,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "capacity validation passed",
		"prototype", p.String(),
	)
}
