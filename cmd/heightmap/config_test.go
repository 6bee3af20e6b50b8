package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/spf13/cobra"
)

// loadTestConfig parses args with the render command and returns the
// resulting configuration.
func loadTestConfig(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var cfg *Config
	var cfgErr error
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "render" {
			cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
				cfg, cfgErr = LoadConfig(cmd)
				return cfgErr
			}
			cmd.RunE = func(*cobra.Command, []string) error { return nil }
		}
	}
	rootCmd.PersistentPreRunE = nil
	rootCmd.PersistentPostRunE = nil
	rootCmd.SetArgs(append([]string{"render"}, args...))
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	if err := rootCmd.Execute(); err != nil && cfgErr == nil {
		return nil, err
	}
	return cfg, cfgErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadTestConfig(t)
	assert.NoError(t, err)
	assert.Equal(t, &Config{
		DataDir:      defaultDataDir,
		Exclude:      []float64{-0.9},
		Concurrency:  4,
		OutputPath:   "heightmap.png",
		LogFormat:    "text",
		LogLevel:     slog.LevelInfo,
		OutputFormat: "",
	}, cfg)
}

func TestLoadConfig_Precedence(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "heightmap.hcl")
	assert.NoError(t, os.WriteFile(configFile, []byte(`
dataset {
  root              = "/srv/terr50"
  exclude           = [-0.9, -9999]
  use_header_nodata = true
  concurrency       = 8
}

output {
  path   = "file.tif"
  format = "tiff"
}
`), 0o666))

	cfg, err := loadTestConfig(t, "--config", configFile)
	assert.NoError(t, err)
	assert.Equal(t, "/srv/terr50", cfg.DataDir)
	assert.Equal(t, []float64{-0.9, -9999}, cfg.Exclude)
	assert.True(t, cfg.UseHeaderNoData)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "file.tif", cfg.OutputPath)
	assert.Equal(t, "tiff", cfg.OutputFormat)

	t.Setenv("HEIGHTMAP_DATA_DIR", "/env/terr50")
	t.Setenv("HEIGHTMAP_EXCLUDE", "")
	t.Setenv("HEIGHTMAP_CONCURRENCY", "2")
	t.Setenv("HEIGHTMAP_LOG_LEVEL", "debug")
	cfg, err = loadTestConfig(t, "--config", configFile)
	assert.NoError(t, err)
	assert.Equal(t, "/env/terr50", cfg.DataDir)
	assert.Equal(t, 0, len(cfg.Exclude))
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	cfg, err = loadTestConfig(t,
		"--config", configFile,
		"--data-dir", "/flag/terr50",
		"--exclude", "1,2.5",
		"-j", "3",
		"-o", "flag.png",
		"--format", "png",
	)
	assert.NoError(t, err)
	assert.Equal(t, "/flag/terr50", cfg.DataDir)
	assert.Equal(t, []float64{1, 2.5}, cfg.Exclude)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "flag.png", cfg.OutputPath)
	assert.Equal(t, "png", cfg.OutputFormat)
	assert.True(t, cfg.UseHeaderNoData)
}

func TestLoadConfig_Errors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{name: "log_format", args: []string{"--log-format", "xml"}},
		{name: "log_level", args: []string{"--log-level", "loud"}},
		{name: "concurrency", args: []string{"--concurrency", "0"}},
		{name: "missing_config", args: []string{"--config", filepath.Join(t.TempDir(), "missing.hcl")}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := loadTestConfig(t, tc.args...)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidConfigFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "heightmap.hcl")
	assert.NoError(t, os.WriteFile(configFile, []byte(`dataset { concurrency = "many" }`), 0o666))
	_, err := loadTestConfig(t, "--config", configFile)
	assert.Error(t, err)
}

func TestParseFloats(t *testing.T) {
	for _, tc := range []struct {
		s           string
		expected    []float64
		expectedErr bool
	}{
		{s: "", expected: nil},
		{s: "-0.9", expected: []float64{-0.9}},
		{s: " -0.9, 3.4028235e+38 ,", expected: []float64{-0.9, 3.4028235e+38}},
		{s: "-0.9,x", expectedErr: true},
	} {
		t.Run(tc.s, func(t *testing.T) {
			actual, err := parseFloats(tc.s)
			if tc.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}
