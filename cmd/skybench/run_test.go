package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/skyindex"
	"github.com/hupe1980/skyindex/config"
	"github.com/hupe1980/skyindex/report"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Source.Kind = config.SourceMemory
	cfg.Generate.Enabled = true
	cfg.Generate.Size = "50"
	cfg.Report.Queries = 200
	cfg.Engine.Validation = "exact"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRun_GeneratedToStdout(t *testing.T) {
	var out, logs bytes.Buffer
	cfg := testConfig(t)

	require.NoError(t, run(context.Background(), cfg, newLogger(cfg, &logs), &out))

	var rep report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, 200, rep.TotalQueries)
	assert.Empty(t, rep.Disagreements)
	assert.Empty(t, rep.Invalid, "generated data is filled exactly to capacity")
	require.Len(t, rep.Builds, 2)
	assert.Equal(t, "baseline", rep.Builds[0].Prototype)
	assert.Equal(t, 50, rep.Builds[1].Flights)

	assert.Contains(t, logs.String(), "dataset generated")
	assert.Contains(t, logs.String(), "build completed")
}

func TestRun_SaveThenLoad(t *testing.T) {
	dir := t.TempDir()

	cfg := testConfig(t)
	cfg.Source = config.SourceConfig{Kind: config.SourceLocal, Dir: dir}
	cfg.Dataset.Compression = "zstd"
	cfg.Generate.Save = true
	cfg.Report.Output = "reports/first.yaml"

	var logs bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, newLogger(cfg, &logs), &bytes.Buffer{}))

	for _, name := range []string{"flights.csv.zst", "passengers.csv.zst", "reservations.csv.zst", "reports/first.yaml"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	cfg.Generate.Enabled = false
	cfg.Generate.Save = false
	cfg.Report.Output = "-"
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, newLogger(cfg, &logs), &out))
	assert.Contains(t, logs.String(), "dataset loaded")

	var rep report.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, 50, rep.Builds[0].Flights)
}

func TestRun_MissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Source = config.SourceConfig{Kind: config.SourceLocal, Dir: t.TempDir()}
	cfg.Generate.Enabled = false

	err := run(context.Background(), cfg, skyindex.NoopLogger(), &bytes.Buffer{})
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := run(ctx, testConfig(t), skyindex.NoopLogger(), &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "json"

	var buf bytes.Buffer
	newLogger(cfg, &buf).Info("hello", "n", 1)
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(cfg, &buf).Debug("hidden")
	assert.Empty(t, buf.String())
}
