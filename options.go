package skyindex

import (
	"log/slog"
	"time"

	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/index/reservationarray"
	"github.com/hupe1980/skyindex/resource"
)

const (
	// DefaultBatchSize is the number of flights or passengers inserted between
	// cancellation checks.
	DefaultBatchSize = 10_000
	// DefaultReservationBatchSize is the equivalent for reservations.
	DefaultReservationBatchSize = 50_000
	// DefaultProgressInterval is the minimum time between progress log lines.
	DefaultProgressInterval = 2 * time.Second
	// DefaultMinTableSize is the smallest passenger table Build retries with
	// after an allocation failure.
	DefaultMinTableSize = 1024
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	batchSize        int
	reservationBatch int
	progressInterval time.Duration
	rc               *resource.Controller
	validate         bool
	validationMode   capacity.Mode
	growth           reservationarray.GrowthPolicy
	minTableSize     int
}

// Option configures Build.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &skyindex.BasicMetricsCollector{}
//	orch, _ := skyindex.Build(ctx, ds, skyindex.WithMetricsCollector(metrics))
//	stats := metrics.GetStats(skyindex.Optimized)
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := skyindex.NewJSONLogger(slog.LevelInfo)
//	orch, _ := skyindex.Build(ctx, ds, skyindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithBatchSize sets how many records are inserted between cancellation
// checks and progress updates, for every component.
func WithBatchSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
			o.reservationBatch = n
		}
	}
}

// WithProgressInterval sets the minimum time between build progress logs.
func WithProgressInterval(d time.Duration) Option {
	return func(o *options) {
		o.progressInterval = d
	}
}

// WithResourceController bounds the memory of every index of both engines.
// When a passenger table cannot be reserved, Build retries with smaller
// tables down to the minimum table size.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithValidation routes reservations through capacity admission while
// building. Rejected bookings are counted in BuildReport.Rejected and do not
// fail the build. mode is used by Engine.ValidateCapacity.
func WithValidation(mode capacity.Mode) Option {
	return func(o *options) {
		o.validate = true
		o.validationMode = mode
	}
}

// WithGrowthPolicy sets the capacity growth of the baseline reservation array.
func WithGrowthPolicy(g reservationarray.GrowthPolicy) Option {
	return func(o *options) {
		o.growth = g
	}
}

// WithMinTableSize sets the smallest passenger table size Build falls back to.
func WithMinTableSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.minTableSize = n
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		batchSize:        DefaultBatchSize,
		reservationBatch: DefaultReservationBatchSize,
		progressInterval: DefaultProgressInterval,
		validationMode:   capacity.AtMost,
		growth:           reservationarray.DefaultGrowthPolicy,
		minTableSize:     DefaultMinTableSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
