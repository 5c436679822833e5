// Package config loads the skybench configuration from YAML with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/skyindex/capacity"
	"github.com/hupe1980/skyindex/dataset"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKY_"

// Source kinds.
const (
	SourceLocal  = "local"
	SourceMemory = "memory"
	SourceS3     = "s3"
	SourceMinIO  = "minio"
)

// Config is the top-level configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Generate GenerateConfig `yaml:"generate"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Report   ReportConfig   `yaml:"report"`
}

// SourceConfig selects the blob store datasets are read from.
type SourceConfig struct {
	Kind      string `yaml:"kind"`
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Secure    bool   `yaml:"secure"`
}

// DatasetConfig names the dataset files.
type DatasetConfig struct {
	Files       dataset.Names `yaml:"files"`
	Compression string        `yaml:"compression"`
}

// GenerateConfig controls synthetic data generation. When enabled the
// dataset is generated instead of loaded, and saved to the source if Save is set.
type GenerateConfig struct {
	Enabled bool   `yaml:"enabled"`
	Size    string `yaml:"size"`
	Seed    int64  `yaml:"seed"`
	Save    bool   `yaml:"save"`
}

// EngineConfig tunes index construction.
type EngineConfig struct {
	BatchSize        int           `yaml:"batchSize"`
	ProgressInterval time.Duration `yaml:"progressInterval"`
	MemoryLimitBytes int64         `yaml:"memoryLimitBytes"`
	MaxWorkers       int64         `yaml:"maxWorkers"`
	IOLimitBytes     int64         `yaml:"ioLimitBytesPerSec"`
	Validation       string        `yaml:"validation"` // "", "at-most", "exact"
	MinTableSize     int           `yaml:"minTableSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// ReportConfig controls the comparison workload and where its report goes.
type ReportConfig struct {
	Output  string `yaml:"output"` // "-" for stdout, otherwise a blob name in the source
	Queries int    `yaml:"queries"`
	Seed    int64  `yaml:"seed"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind: SourceLocal,
			Dir:  "data",
		},
		Dataset: DatasetConfig{
			Files:       dataset.DefaultNames(),
			Compression: "none",
		},
		Generate: GenerateConfig{
			Size: dataset.Medium.String(),
			Seed: 42,
		},
		Engine: EngineConfig{
			BatchSize:        10_000,
			ProgressInterval: 2 * time.Second,
			MaxWorkers:       3,
			MinTableSize:     1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Report: ReportConfig{
			Output:  "-",
			Queries: 1000,
			Seed:    7,
		},
	}
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Names returns the dataset file names with the configured compression applied
// to names that do not already carry an extension.
func (c *Config) Names() (dataset.Names, error) {
	comp, err := dataset.ParseCompression(c.Dataset.Compression)
	if err != nil {
		return dataset.Names{}, err
	}
	n := c.Dataset.Files
	apply := func(name string) string {
		if dataset.CompressionOf(name) == dataset.None {
			return name + comp.Ext()
		}
		return name
	}
	return dataset.Names{
		Flights:      apply(n.Flights),
		Passengers:   apply(n.Passengers),
		Reservations: apply(n.Reservations),
	}, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	switch c.Source.Kind {
	case SourceLocal:
		if c.Source.Dir == "" {
			errs = append(errs, errors.New("config: source.dir is required for local sources"))
		}
	case SourceMemory:
		if !c.Generate.Enabled {
			errs = append(errs, errors.New("config: memory sources require generate.enabled"))
		}
	case SourceS3, SourceMinIO:
		if c.Source.Bucket == "" {
			errs = append(errs, fmt.Errorf("config: source.bucket is required for %s sources", c.Source.Kind))
		}
		if c.Source.Kind == SourceMinIO && c.Source.Endpoint == "" {
			errs = append(errs, errors.New("config: source.endpoint is required for minio sources"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown source.kind %q", c.Source.Kind))
	}
	if err := c.Dataset.Files.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := dataset.ParseCompression(c.Dataset.Compression); err != nil {
		errs = append(errs, err)
	}
	if c.Generate.Enabled {
		if _, err := dataset.ParseSize(c.Generate.Size); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Engine.Validation != "" && c.Engine.Validation != "off" {
		if _, err := capacity.ParseMode(c.Engine.Validation); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Engine.BatchSize < 0 {
		errs = append(errs, errors.New("config: engine.batchSize must not be negative"))
	}
	if c.Engine.MemoryLimitBytes < 0 {
		errs = append(errs, errors.New("config: engine.memoryLimitBytes must not be negative"))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: unknown logging.format %q", c.Logging.Format))
	}
	if c.Report.Queries < 0 {
		errs = append(errs, errors.New("config: report.queries must not be negative"))
	}
	return errors.Join(errs...)
}

// ValidationMode returns the capacity mode bookings are checked with, or
// false when validation is off.
func (c *Config) ValidationMode() (capacity.Mode, bool) {
	if c.Engine.Validation == "" || c.Engine.Validation == "off" {
		return 0, false
	}
	m, err := capacity.ParseMode(c.Engine.Validation)
	return m, err == nil
}

// LogLevel parses Logging.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return 0, fmt.Errorf("config: logging.level: %w", err)
	}
	return lvl, nil
}

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides reads SKY_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int64) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = n
		}
	}
	integer := func(key string, dst *int) {
		n := int64(*dst)
		num(key, &n)
		*dst = int(n)
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = b
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err))
				return
			}
			*dst = d
		}
	}

	str("SOURCE_KIND", &cfg.Source.Kind)
	str("SOURCE_DIR", &cfg.Source.Dir)
	str("SOURCE_BUCKET", &cfg.Source.Bucket)
	str("SOURCE_PREFIX", &cfg.Source.Prefix)
	str("SOURCE_ENDPOINT", &cfg.Source.Endpoint)
	str("SOURCE_REGION", &cfg.Source.Region)
	str("SOURCE_ACCESS_KEY", &cfg.Source.AccessKey)
	str("SOURCE_SECRET_KEY", &cfg.Source.SecretKey)
	boolean("SOURCE_SECURE", &cfg.Source.Secure)

	str("DATASET_FLIGHTS", &cfg.Dataset.Files.Flights)
	str("DATASET_PASSENGERS", &cfg.Dataset.Files.Passengers)
	str("DATASET_RESERVATIONS", &cfg.Dataset.Files.Reservations)
	str("DATASET_COMPRESSION", &cfg.Dataset.Compression)

	boolean("GENERATE_ENABLED", &cfg.Generate.Enabled)
	str("GENERATE_SIZE", &cfg.Generate.Size)
	num("GENERATE_SEED", &cfg.Generate.Seed)
	boolean("GENERATE_SAVE", &cfg.Generate.Save)

	integer("ENGINE_BATCH_SIZE", &cfg.Engine.BatchSize)
	duration("ENGINE_PROGRESS_INTERVAL", &cfg.Engine.ProgressInterval)
	num("ENGINE_MEMORY_LIMIT_BYTES", &cfg.Engine.MemoryLimitBytes)
	num("ENGINE_MAX_WORKERS", &cfg.Engine.MaxWorkers)
	num("ENGINE_IO_LIMIT_BYTES", &cfg.Engine.IOLimitBytes)
	str("ENGINE_VALIDATION", &cfg.Engine.Validation)
	integer("ENGINE_MIN_TABLE_SIZE", &cfg.Engine.MinTableSize)

	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)

	boolean("METRICS_ENABLED", &cfg.Metrics.Enabled)
	str("METRICS_ADDR", &cfg.Metrics.Addr)

	str("REPORT_OUTPUT", &cfg.Report.Output)
	integer("REPORT_QUERIES", &cfg.Report.Queries)
	num("REPORT_SEED", &cfg.Report.Seed)

	return errors.Join(errs...)
}
