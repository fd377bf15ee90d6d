package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Orbitflow OrbitflowConfig `yaml:"orbitflow"`
	Export    ExportConfig    `yaml:"export"`
	Source    SourceConfig    `yaml:"source"`
	Writer    WriterConfig    `yaml:"writer"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type OrbitflowConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ExportConfig describes the requested coverage window. The start time is
// fixed-form "YYYY-MM-DD HH:MM"; the requested stop time is derived from the
// start year plus the year count so that the window stays aligned to the
// Jan 1 12:00 boundaries the chunker bisects on.
type ExportConfig struct {
	OutDir      string `yaml:"out_dir"`
	StartTime   string `yaml:"start_time"`
	Years       int    `yaml:"years"`
	PlanetStep  string `yaml:"planet_step"`
	MoonStep    string `yaml:"moon_step"`
	MaxStopYear int    `yaml:"max_stop_year"`
}

type SourceConfig struct {
	Horizons HorizonsConfig `yaml:"horizons"`
}

type HorizonsConfig struct {
	URL            string               `yaml:"url"`
	Timeout        time.Duration        `yaml:"timeout"`
	ConnectionPool ConnectionPoolConfig `yaml:"connection_pool"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
}

type ConnectionPoolConfig struct {
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`
	IdleConnTimeout time.Duration `yaml:"idle_conn_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

type WriterConfig struct {
	Formats FormatsConfig `yaml:"formats"`
}

type FormatsConfig struct {
	Parquet ParquetConfig `yaml:"parquet"`
}

// ParquetConfig controls the optional analysis dump of parsed samples,
// written alongside the binary tables for inspection with columnar tools.
type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Compression string `yaml:"compression"`
}

type StorageConfig struct {
	S3 S3Config `yaml:"s3"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
	Report bool   `yaml:"report"`
}

func LoadConfig(path string) (*Config, error) {
	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Export: ExportConfig{
			OutDir:      "assets/ephemeris",
			StartTime:   "2000-01-01 12:00",
			Years:       600,
			PlanetStep:  "1 d",
			MoonStep:    "2 h",
			MaxStopYear: 2500,
		},
		Source: SourceConfig{
			Horizons: HorizonsConfig{
				URL:     "https://ssd.jpl.nasa.gov/api/horizons.api",
				Timeout: 120 * time.Second,
			},
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override S3 settings from environment variables if available
	if config.Storage.S3.Enabled {
		if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
			config.Storage.S3.AccessKeyID = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
			config.Storage.S3.SecretAccessKey = strings.TrimSpace(v)
		}
		if v := os.Getenv("AWS_REGION"); v != "" {
			config.Storage.S3.Region = strings.TrimSpace(v)
		}
		if v := os.Getenv("S3_BUCKET"); v != "" {
			config.Storage.S3.Bucket = strings.TrimSpace(v)
		}
	}

	config.Storage.S3.Bucket = strings.TrimSpace(config.Storage.S3.Bucket)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// RequestedStopTime derives the requested stop timestamp from the start year
// plus the configured year count, pinned to Jan 1 12:00.
func (e ExportConfig) RequestedStopTime() (string, error) {
	startYear, err := startYearOf(e.StartTime)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-01-01 12:00", startYear+e.Years), nil
}

var startTimeRegexp = regexp.MustCompile(`^(\d{4})-\d{2}-\d{2} \d{2}:\d{2}$`)

func startYearOf(startTime string) (int, error) {
	m := startTimeRegexp.FindStringSubmatch(startTime)
	if m == nil {
		return 0, fmt.Errorf("export.start_time %q is not in 'YYYY-MM-DD HH:MM' form", startTime)
	}
	var year int
	if _, err := fmt.Sscanf(m[1], "%d", &year); err != nil {
		return 0, fmt.Errorf("export.start_time %q has an invalid year: %w", startTime, err)
	}
	return year, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Orbitflow.Name == "" {
		return fmt.Errorf("orbitflow.name is required")
	}

	if cfg.Orbitflow.Version == "" {
		return fmt.Errorf("orbitflow.version is required")
	}

	if cfg.Export.OutDir == "" {
		return fmt.Errorf("export.out_dir is required")
	}
	if cfg.Export.Years <= 0 {
		return fmt.Errorf("export.years must be greater than 0")
	}
	if _, err := startYearOf(cfg.Export.StartTime); err != nil {
		return err
	}
	if cfg.Export.PlanetStep == "" || cfg.Export.MoonStep == "" {
		return fmt.Errorf("export.planet_step and export.moon_step are required")
	}
	if cfg.Export.MaxStopYear < 0 {
		return fmt.Errorf("export.max_stop_year must not be negative")
	}

	if cfg.Source.Horizons.URL == "" {
		return fmt.Errorf("source.horizons.url is required")
	}
	if cfg.Source.Horizons.Timeout <= 0 {
		return fmt.Errorf("source.horizons.timeout must be greater than 0")
	}
	if cfg.Source.Horizons.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("source.horizons.rate_limit.requests_per_second must not be negative")
	}

	if cfg.Storage.S3.Enabled {
		if cfg.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when S3 is enabled")
		}
		if cfg.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when S3 is enabled")
		}
		if cfg.Storage.S3.AccessKeyID == "" || cfg.Storage.S3.SecretAccessKey == "" {
			return fmt.Errorf("storage.s3.access_key_id and storage.s3.secret_access_key are required when S3 is enabled")
		}
		if !isValidS3Bucket(cfg.Storage.S3.Bucket) {
			return fmt.Errorf("storage.s3.bucket '%s' is invalid", cfg.Storage.S3.Bucket)
		}
	}

	return nil
}

var s3BucketRegexp = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]{1,61}[a-z0-9]$`)

func isValidS3Bucket(name string) bool {
	if len(name) < 3 || len(name) > 63 {
		return false
	}
	if strings.Contains(name, "..") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	return s3BucketRegexp.MatchString(name)
}
