package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g-m-twostay/go-ostree/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ostbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultSizes, cfg.Sizes)
	assert.Empty(t, cfg.Workloads)
	assert.Equal(t, config.DefaultRepeat, cfg.Repeat)
	assert.Equal(t, config.WidthCompact, cfg.Width)
	assert.Equal(t, "-", cfg.Output.CSV)
	assert.False(t, cfg.Debug)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
sizes: [10, 20]
workloads: [search, select]
variants: [freelist]
repeat: 1
width: wide
output:
  csv: out.csv
  metrics: out.prom
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20}, cfg.Sizes)
	assert.Equal(t, []string{"search", "select"}, cfg.Workloads)
	assert.Equal(t, []string{"freelist"}, cfg.Variants)
	assert.Equal(t, 1, cfg.Repeat)
	assert.Equal(t, config.WidthWide, cfg.Width)
	assert.Equal(t, "out.csv", cfg.Output.CSV)
	assert.Equal(t, "out.prom", cfg.Output.Metrics)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "repeat: 2\n")
	t.Setenv("OSTBENCH_REPEAT", "5")
	t.Setenv("OSTBENCH_OUTPUT_METRICS", "env.prom")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Repeat)
	assert.Equal(t, "env.prom", cfg.Output.Metrics)
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeConfig(t, "width: medium\n")
	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidWidth)
	assert.Contains(t, err.Error(), "validate config")

	_, err = config.LoadConfig(writeConfig(t, "sizes: [: bad\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestValidate(t *testing.T) {
	valid := func() config.Config {
		return config.Config{Sizes: []int{1}, Repeat: 1, Width: config.WidthCompact, Output: config.OutputConfig{CSV: "-"}}
	}
	cfg := valid()
	require.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Sizes = []int{5, 0}
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidSize)

	cfg = valid()
	cfg.Repeat = 0
	require.ErrorIs(t, cfg.Validate(), config.ErrInvalidRepeat)

	cfg = valid()
	cfg.Output = config.OutputConfig{}
	require.ErrorIs(t, cfg.Validate(), config.ErrNoOutput)

	cfg = valid()
	cfg.Output = config.OutputConfig{Metrics: "m.prom"}
	require.NoError(t, cfg.Validate())
}
