package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/skyindex/blobstore"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/resource"
	"golang.org/x/sync/errgroup"
)

// Names are the blob names of the three dataset files.
type Names struct {
	Flights      string `yaml:"flights"`
	Passengers   string `yaml:"passengers"`
	Reservations string `yaml:"reservations"`
}

// DefaultNames returns flights.csv, passengers.csv, and reservations.csv.
func DefaultNames() Names {
	return Names{
		Flights:      "flights.csv",
		Passengers:   "passengers.csv",
		Reservations: "reservations.csv",
	}
}

// WithCompression appends the codec extension to every name.
func (n Names) WithCompression(c Compression) Names {
	ext := c.Ext()
	return Names{
		Flights:      n.Flights + ext,
		Passengers:   n.Passengers + ext,
		Reservations: n.Reservations + ext,
	}
}

// Validate reports missing names.
func (n Names) Validate() error {
	var errs []error
	if n.Flights == "" {
		errs = append(errs, errors.New("dataset: flights file name is empty"))
	}
	if n.Passengers == "" {
		errs = append(errs, errors.New("dataset: passengers file name is empty"))
	}
	if n.Reservations == "" {
		errs = append(errs, errors.New("dataset: reservations file name is empty"))
	}
	return errors.Join(errs...)
}

// Option configures Load and Save.
type Option func(*options)

type options struct {
	rc            *resource.Controller
	allowMissing  bool
	compression   *Compression
	onFileSummary func(name string, records int, bytes int64)
}

// WithResourceController bounds parallel fetches by the controller's worker
// slots and throttles reads by its IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) { o.rc = rc }
}

// WithAllowMissing treats a missing file as empty instead of failing.
func WithAllowMissing() Option {
	return func(o *options) { o.allowMissing = true }
}

// WithCompression forces a codec instead of inferring it from the file extension.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = &c }
}

// WithFileCallback is invoked once per file after it has been processed.
// Files are processed in parallel, so fn may be called concurrently.
func WithFileCallback(fn func(name string, records int, bytes int64)) Option {
	return func(o *options) { o.onFileSummary = fn }
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func (o options) codec(name string) Compression {
	if o.compression != nil {
		return *o.compression
	}
	return CompressionOf(name)
}

func (o options) report(name string, records int, bytes int64) {
	if o.onFileSummary != nil {
		o.onFileSummary(name, records, bytes)
	}
}

// Load fetches and decodes the three files named by names from store.
// The files are fetched in parallel; the first failure cancels the others.
func Load(ctx context.Context, store blobstore.BlobStore, names Names, opts ...Option) (model.Dataset, error) {
	if err := names.Validate(); err != nil {
		return model.Dataset{}, err
	}
	o := applyOptions(opts)

	var ds model.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := loadFile(gctx, store, names.Flights, o, ReadFlights)
		ds.Flights = v
		return err
	})
	g.Go(func() error {
		v, err := loadFile(gctx, store, names.Passengers, o, ReadPassengers)
		ds.Passengers = v
		return err
	})
	g.Go(func() error {
		v, err := loadFile(gctx, store, names.Reservations, o, ReadReservations)
		ds.Reservations = v
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

func loadFile[T any](ctx context.Context, store blobstore.BlobStore, name string, o options, read func(io.Reader, string) ([]T, error)) ([]T, error) {
	if err := o.rc.AcquireWorker(ctx); err != nil {
		return nil, err
	}
	defer o.rc.ReleaseWorker()

	rc, size, err := blobstore.OpenReader(ctx, store, name)
	if err != nil {
		if o.allowMissing && errors.Is(err, blobstore.ErrNotFound) {
			o.report(name, 0, 0)
			return nil, nil
		}
		return nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	zr, err := NewReader(o.codec(name), resource.NewReader(ctx, rc, o.rc))
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", name, err)
	}
	defer func() { _ = zr.Close() }()

	v, err := read(zr, name)
	if err != nil {
		return nil, err
	}
	o.report(name, len(v), size)
	return v, nil
}

// Save encodes ds into the three files named by names. Each file is
// compressed according to its extension.
func Save(ctx context.Context, store blobstore.BlobStore, names Names, ds model.Dataset, opts ...Option) error {
	if err := names.Validate(); err != nil {
		return err
	}
	o := applyOptions(opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return saveFile(gctx, store, names.Flights, o, len(ds.Flights), func(w io.Writer) error {
			return WriteFlights(w, ds.Flights)
		})
	})
	g.Go(func() error {
		return saveFile(gctx, store, names.Passengers, o, len(ds.Passengers), func(w io.Writer) error {
			return WritePassengers(w, ds.Passengers)
		})
	})
	g.Go(func() error {
		return saveFile(gctx, store, names.Reservations, o, len(ds.Reservations), func(w io.Writer) error {
			return WriteReservations(w, ds.Reservations)
		})
	})
	return g.Wait()
}

func saveFile(ctx context.Context, store blobstore.BlobStore, name string, o options, records int, write func(io.Writer) error) error {
	if err := o.rc.AcquireWorker(ctx); err != nil {
		return err
	}
	defer o.rc.ReleaseWorker()

	wb, err := store.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("dataset: create %s: %w", name, err)
	}
	cw := &countingWriter{w: wb}
	zw, err := NewWriter(o.codec(name), cw)
	if err != nil {
		_ = blobstore.Abort(wb)
		return fmt.Errorf("dataset: %s: %w", name, err)
	}
	if err := write(zw); err != nil {
		_ = zw.Close()
		_ = blobstore.Abort(wb)
		return fmt.Errorf("dataset: write %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		_ = blobstore.Abort(wb)
		return fmt.Errorf("dataset: flush %s: %w", name, err)
	}
	if err := wb.Close(); err != nil {
		return fmt.Errorf("dataset: commit %s: %w", name, err)
	}
	o.report(name, records, cw.n)
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
