package skyindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/index"
	"github.com/hupe1980/skyindex/index/flightavl"
	"github.com/hupe1980/skyindex/index/flightbst"
	"github.com/hupe1980/skyindex/index/passengerhash"
	"github.com/hupe1980/skyindex/index/passengerlist"
	"github.com/hupe1980/skyindex/index/reservationarray"
	"github.com/hupe1980/skyindex/index/reservationbst"
	"github.com/hupe1980/skyindex/internal/mem"
	"github.com/hupe1980/skyindex/model"
)

// BuildReport describes how one engine was built.
type BuildReport struct {
	Prototype Prototype

	// Stored record counts after upserts.
	Flights      int
	Passengers   int
	Reservations int

	// Rejected counts reservations refused by capacity admission.
	Rejected int

	FlightTime      time.Duration
	PassengerTime   time.Duration
	ReservationTime time.Duration
	Total           time.Duration

	// PassengerTableSize is the initial bucket count of the optimized
	// passenger table, 0 for the baseline.
	PassengerTableSize int
	// TableRetries counts passenger table allocations that were retried smaller.
	TableRetries int

	Nodes   index.NodeStats
	PeakRSS int64
}

// Build constructs the baseline and the optimized engine from the same
// dataset, timing each phase. Records are inserted in batches; ctx is checked
// between batches.
func Build(ctx context.Context, ds model.Dataset, optFns ...Option) (*Orchestrator, error) {
	opts := applyOptions(optFns)
	o := &Orchestrator{opts: opts}

	for _, p := range Prototypes {
		e, err := buildEngine(ctx, p, ds, &opts)
		if err != nil {
			_ = o.Close()
			return nil, translateError(err)
		}
		i, _ := p.slot()
		o.engines[i] = e
	}
	return o, nil
}

func buildEngine(ctx context.Context, p Prototype, ds model.Dataset, opts *options) (*Engine, error) {
	start := time.Now()
	logger := opts.logger.WithPrototype(p)
	b := &builder{ctx: ctx, p: p, opts: opts, logger: logger, progress: &rate.Sometimes{Interval: opts.progressInterval}}

	e := &Engine{prototype: p, logger: opts.logger, metrics: opts.metricsCollector}
	report := BuildReport{Prototype: p}

	passengers, size, retries, err := b.newPassengerIndex(len(ds.Passengers))
	if err != nil {
		return nil, &BuildError{Prototype: p, Component: "passengers", cause: err}
	}
	e.flights, e.passengers, e.reservations = b.newFlightIndex(), passengers, b.newReservationIndex()
	report.PassengerTableSize, report.TableRetries = size, retries

	fail := func(component string, err error) (*Engine, error) {
		_ = e.Close()
		report.Total = time.Since(start)
		bErr := &BuildError{Prototype: p, Component: component, cause: err}
		opts.logger.LogBuild(ctx, report, bErr)
		return nil, bErr
	}

	if report.FlightTime, err = insertBatches(b, "flights", ds.Flights, opts.batchSize, e.flights.Insert); err != nil {
		return fail("flights", err)
	}
	if report.PassengerTime, err = insertBatches(b, "passengers", ds.Passengers, opts.batchSize, e.passengers.Insert); err != nil {
		return fail("passengers", err)
	}

	insertReservation := e.reservations.Insert
	if opts.validate {
		insertReservation = func(r model.Reservation) error {
			err := e.reservations.AddWithValidation(r, e.flights)
			if errors.Is(err, index.ErrCapacityExceeded) || errors.Is(err, index.ErrFlightNotFound) {
				opts.metricsCollector.RecordBooking(p, err)
				report.Rejected++
				return nil
			}
			if err == nil {
				opts.metricsCollector.RecordBooking(p, nil)
			}
			return err
		}
	}
	if report.ReservationTime, err = insertBatches(b, "reservations", ds.Reservations, opts.reservationBatch, insertReservation); err != nil {
		return fail("reservations", err)
	}

	e.validator = capacity.New(e.flights, e.reservations, opts.validationMode)

	report.Flights, report.Passengers, report.Reservations = e.Counts()
	report.Nodes = e.NodeStats()
	report.PeakRSS = mem.Read().PeakRSS
	report.Total = time.Since(start)
	e.report = report

	opts.logger.LogBuild(ctx, report, nil)
	return e, nil
}

type builder struct {
	ctx      context.Context
	p        Prototype
	opts     *options
	logger   *Logger
	progress *rate.Sometimes
}

func insertBatches[T any](b *builder, component string, items []T, batch int, insert func(T) error) (time.Duration, error) {
	start := time.Now()
	var err error
	defer func() {
		b.opts.metricsCollector.RecordBuild(b.p, component, len(items), time.Since(start), err)
	}()

	for lo := 0; lo < len(items); lo += batch {
		if err = b.ctx.Err(); err != nil {
			return time.Since(start), err
		}
		hi := min(lo+batch, len(items))
		for i := lo; i < hi; i++ {
			if err = insert(items[i]); err != nil {
				return time.Since(start), fmt.Errorf("record %d: %w", i, err)
			}
		}
		b.progress.Do(func() {
			b.logger.InfoContext(b.ctx, "build progress",
				"component", component,
				"done", hi,
				"total", len(items),
			)
		})
	}
	return time.Since(start), nil
}

func (b *builder) newFlightIndex() index.FlightIndex {
	rc := b.opts.rc
	if b.p == Baseline {
		return flightbst.New(func(o *flightbst.Options) {
			if rc != nil {
				o.MemoryAcquirer = rc
			}
		})
	}
	return flightavl.New(func(o *flightavl.Options) {
		if rc != nil {
			o.MemoryAcquirer = rc
		}
	})
}

func (b *builder) newReservationIndex() index.ReservationIndex {
	rc := b.opts.rc
	if b.p == Baseline {
		return reservationarray.New(func(o *reservationarray.Options) {
			o.Growth = b.opts.growth
			if rc != nil {
				o.MemoryAcquirer = rc
			}
		})
	}
	return reservationbst.New(func(o *reservationbst.Options) {
		if rc != nil {
			o.MemoryAcquirer = rc
		}
	})
}

// newPassengerIndex creates the passenger index. For the optimized engine a
// refused table allocation is retried with half the size until the minimum
// table size is reached.
func (b *builder) newPassengerIndex(n int) (index.PassengerIndex, int, int, error) {
	rc := b.opts.rc
	if b.p == Baseline {
		return passengerlist.New(func(o *passengerlist.Options) {
			if rc != nil {
				o.MemoryAcquirer = rc
			}
		}), 0, 0, nil
	}

	desired := max(n, 1)
	retries := 0
	for {
		tbl, err := passengerhash.New(desired, func(o *passengerhash.Options) {
			if rc != nil {
				o.MemoryAcquirer = rc
			}
		})
		if err == nil {
			return tbl, tbl.Size(), retries, nil
		}
		if !errors.Is(err, index.ErrAllocationFailed) || desired <= b.opts.minTableSize {
			return nil, 0, retries, err
		}

		next := max(desired/2, b.opts.minTableSize)
		b.logger.WarnContext(b.ctx, "passenger table allocation failed, retrying smaller",
			"desired", desired,
			"retry", next,
			"error", err,
		)
		desired = next
		retries++
	}
}
