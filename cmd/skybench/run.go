package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/blobstore"
	"github.com/hupe1980/skyindex/blobstore/minio"
	"github.com/hupe1980/skyindex/blobstore/s3"
	"github.com/hupe1980/skyindex/codec"
	"github.com/hupe1980/skyindex/config"
	"github.com/hupe1980/skyindex/dataset"
	promcollector "github.com/hupe1980/skyindex/metrics/prometheus"
	"github.com/hupe1980/skyindex/model"
	"github.com/hupe1980/skyindex/report"
	"github.com/hupe1980/skyindex/resource"
)

// errDisagree is returned when the prototypes answered a query differently.
var errDisagree = errors.New("prototypes disagree")

func run(ctx context.Context, cfg *config.Config, logger *skyindex.Logger, stdout io.Writer) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	names, err := cfg.Names()
	if err != nil {
		return err
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   cfg.Engine.MemoryLimitBytes,
		MaxWorkers:         cfg.Engine.MaxWorkers,
		IOLimitBytesPerSec: cfg.Engine.IOLimitBytes,
	})

	ds, err := obtainDataset(ctx, cfg, store, names, rc, logger)
	if err != nil {
		return err
	}

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := promcollector.New(reg, "skyindex")

	if cfg.Metrics.Enabled {
		srv := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := []skyindex.Option{
		skyindex.WithLogger(logger),
		skyindex.WithMetricsCollector(collector),
		skyindex.WithBatchSize(cfg.Engine.BatchSize),
		skyindex.WithProgressInterval(cfg.Engine.ProgressInterval),
		skyindex.WithMinTableSize(cfg.Engine.MinTableSize),
		skyindex.WithResourceController(rc),
	}
	mode, validate := cfg.ValidationMode()
	if validate {
		opts = append(opts, skyindex.WithValidation(mode))
	}

	orch, err := skyindex.Build(ctx, ds, opts...)
	if err != nil {
		return err
	}
	defer orch.Close()

	queries := skyindex.RandomQueries(ds, cfg.Report.Queries, cfg.Report.Seed)
	comps, err := orch.CompareAll(ctx, queries)
	if err != nil {
		return err
	}

	rep := report.New(orch.Reports(), comps)
	if validate {
		invalid, err := orch.Engine(skyindex.Optimized).ValidateAll(ctx)
		if err != nil {
			logger.WarnContext(ctx, "dataset fails capacity validation", "flights", len(invalid))
		}
		rep.AddInvalid(invalid)
	}

	if err := writeReport(ctx, cfg, store, rep, stdout); err != nil {
		return err
	}
	if !rep.Agree() {
		return fmt.Errorf("%w on %d of %d queries", errDisagree, len(rep.Disagreements), rep.TotalQueries)
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (blobstore.BlobStore, error) {
	src := cfg.Source
	switch src.Kind {
	case config.SourceLocal:
		return blobstore.NewLocalStore(src.Dir), nil
	case config.SourceMemory:
		return blobstore.NewMemoryStore(), nil
	case config.SourceS3:
		opts := []s3.Option{s3.WithPrefix(src.Prefix)}
		if src.Region != "" {
			opts = append(opts, s3.WithRegion(src.Region))
		}
		if src.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(src.Endpoint))
		}
		return s3.New(ctx, src.Bucket, opts...)
	case config.SourceMinIO:
		store, err := minio.Dial(src.Endpoint, src.Bucket, src.Prefix, minio.Credentials{
			AccessKey: src.AccessKey,
			SecretKey: src.SecretKey,
			Secure:    src.Secure,
			Region:    src.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("dial minio %s: %w", src.Endpoint, err)
		}
		if cfg.Generate.Save {
			if err := store.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func obtainDataset(ctx context.Context, cfg *config.Config, store blobstore.BlobStore, names dataset.Names, rc *resource.Controller, logger *skyindex.Logger) (model.Dataset, error) {
	fileLogged := dataset.WithFileCallback(func(name string, records int, bytes int64) {
		logger.InfoContext(ctx, "dataset file", "name", name, "records", records, "bytes", bytes)
	})

	if !cfg.Generate.Enabled {
		start := time.Now()
		ds, err := dataset.Load(ctx, store, names, dataset.WithResourceController(rc), fileLogged)
		if err != nil {
			return model.Dataset{}, err
		}
		logger.InfoContext(ctx, "dataset loaded", "elapsed", time.Since(start).Round(time.Millisecond))
		return ds, nil
	}

	size, err := dataset.ParseSize(cfg.Generate.Size)
	if err != nil {
		return model.Dataset{}, err
	}
	ds := dataset.Generate(size, cfg.Generate.Seed)
	logger.InfoContext(ctx, "dataset generated",
		"size", size.String(),
		"flights", len(ds.Flights),
		"passengers", len(ds.Passengers),
		"reservations", len(ds.Reservations),
	)
	if cfg.Generate.Save {
		if err := dataset.Save(ctx, store, names, ds, dataset.WithResourceController(rc), fileLogged); err != nil {
			return model.Dataset{}, err
		}
	}
	return ds, nil
}

func writeReport(ctx context.Context, cfg *config.Config, store blobstore.BlobStore, rep *report.Report, stdout io.Writer) error {
	if cfg.Report.Output == "" || cfg.Report.Output == "-" {
		return rep.Encode(stdout, codec.Default)
	}
	return rep.Save(ctx, store, cfg.Report.Output)
}

func serveMetrics(addr string, reg *prom.Registry, logger *skyindex.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
