package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/cobra"

	"github.com/twpayne/go-heightmap"
)

const defaultDataDir = "OS - terr50_gagg_gb"

// Config holds application configuration.
type Config struct {
	DataDir         string
	Exclude         []float64
	UseHeaderNoData bool
	Concurrency     int
	OutputPath      string
	OutputFormat    string
	LogFormat       string
	LogLevel        slog.Level
	Metrics         bool
}

// fileConfig is the structure of a configuration file.
type fileConfig struct {
	Dataset *datasetBlock `hcl:"dataset,block"`
	Output  *outputBlock  `hcl:"output,block"`
}

type datasetBlock struct {
	Root            *string    `hcl:"root,optional"`
	Exclude         *[]float64 `hcl:"exclude,optional"`
	UseHeaderNoData *bool      `hcl:"use_header_nodata,optional"`
	Concurrency     *int       `hcl:"concurrency,optional"`
}

type outputBlock struct {
	Path   *string `hcl:"path,optional"`
	Format *string `hcl:"format,optional"`
}

// readConfigFile parses the HCL configuration file at path.
func readConfigFile(path string) (*fileConfig, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}
	var cfg fileConfig
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}
	if cfg.Dataset == nil {
		cfg.Dataset = &datasetBlock{}
	}
	if cfg.Output == nil {
		cfg.Output = &outputBlock{}
	}
	return &cfg, nil
}

// LoadConfig loads configuration from command flags, environment variables,
// and an optional configuration file, in that order of precedence.
func LoadConfig(cmd *cobra.Command) (*Config, error) {
	file := &fileConfig{
		Dataset: &datasetBlock{},
		Output:  &outputBlock{},
	}
	if path := getConfigString(cmd, "config", "HEIGHTMAP_CONFIG", nil, ""); path != "" {
		var err error
		if file, err = readConfigFile(path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	cfg.DataDir = getConfigString(cmd, "data-dir", "HEIGHTMAP_DATA_DIR", file.Dataset.Root, defaultDataDir)
	cfg.UseHeaderNoData = getConfigBool(cmd, "use-header-nodata", "HEIGHTMAP_USE_HEADER_NODATA", file.Dataset.UseHeaderNoData, false)
	cfg.Concurrency = getConfigInt(cmd, "concurrency", "HEIGHTMAP_CONCURRENCY", file.Dataset.Concurrency, 4)
	cfg.OutputPath = getConfigString(cmd, "output", "HEIGHTMAP_OUTPUT", file.Output.Path, "heightmap.png")
	cfg.OutputFormat = getConfigString(cmd, "format", "HEIGHTMAP_FORMAT", file.Output.Format, "")
	cfg.LogFormat = getConfigString(cmd, "log-format", "HEIGHTMAP_LOG_FORMAT", nil, "text")
	cfg.Metrics = getConfigBool(cmd, "metrics", "HEIGHTMAP_METRICS", nil, false)

	exclude, err := getConfigFloats(cmd, "exclude", "HEIGHTMAP_EXCLUDE", file.Dataset.Exclude, []float64{heightmap.Terr50NoDataValue})
	if err != nil {
		return nil, err
	}
	cfg.Exclude = exclude

	if err := cfg.LogLevel.UnmarshalText([]byte(getConfigString(cmd, "log-level", "HEIGHTMAP_LOG_LEVEL", nil, "info"))); err != nil {
		return nil, err
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("%s: invalid log format: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("%d: invalid concurrency: must be positive", cfg.Concurrency)
	}

	return cfg, nil
}

// NodataPolicy returns the nodata policy described by c.
func (c *Config) NodataPolicy() heightmap.NodataPolicy {
	return heightmap.NodataPolicy{
		Exclude:         c.Exclude,
		UseHeaderNoData: c.UseHeaderNoData,
	}
}

// getConfigString gets a string value from flag, then env, then file, then
// default.
func getConfigString(cmd *cobra.Command, flagName, envName string, fileValue *string, defaultValue string) string {
	if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
		return flag.Value.String()
	}
	if v := os.Getenv(envName); v != "" {
		return v
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getConfigInt gets an int value from flag, then env, then file, then
// default.
func getConfigInt(cmd *cobra.Command, flagName, envName string, fileValue *int, defaultValue int) int {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetInt(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getConfigBool gets a bool value from flag, then env, then file, then
// default.
func getConfigBool(cmd *cobra.Command, flagName, envName string, fileValue *bool, defaultValue bool) bool {
	if cmd.Flags().Changed(flagName) {
		val, _ := cmd.Flags().GetBool(flagName)
		return val
	}
	if v := os.Getenv(envName); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	if fileValue != nil {
		return *fileValue
	}
	return defaultValue
}

// getConfigFloats gets a list of float64 values from flag, then a
// comma-separated env var, then file, then default.
func getConfigFloats(cmd *cobra.Command, flagName, envName string, fileValue *[]float64, defaultValue []float64) ([]float64, error) {
	if cmd.Flags().Changed(flagName) {
		return cmd.Flags().GetFloat64Slice(flagName)
	}
	if v, ok := os.LookupEnv(envName); ok {
		return parseFloats(v)
	}
	if fileValue != nil {
		return *fileValue, nil
	}
	return defaultValue, nil
}

// parseFloats parses a comma-separated list of floats. An empty string is
// an empty list.
func parseFloats(s string) ([]float64, error) {
	var values []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, nil
}
