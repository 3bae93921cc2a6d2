package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Import      ImportConfig  `toml:"import"`
	Export      ExportConfig  `toml:"export"`
	Cleanup     CleanupConfig `toml:"cleanup"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ImportConfig contains ceilings for the document import pipeline.
// Values are part of the external API contract; change with care.
type ImportConfig struct {
	MaxBodyBytes      int64 `toml:"max_body_bytes"`      // Maximum upload body size
	MaxDocuments      int   `toml:"max_documents"`       // Maximum documents per uploaded file
	MaxContentChars   int   `toml:"max_content_chars"`   // Maximum content length per document
	RequestsPerMinute int   `toml:"requests_per_minute"` // Rate limit per caller
}

// ExportConfig contains per-format output ceilings and archive retention.
type ExportConfig struct {
	MaxJSONBytes int64  `toml:"max_json_bytes"` // JSON output ceiling
	MaxCSVBytes  int64  `toml:"max_csv_bytes"`  // CSV output ceiling
	MaxPDFBytes  int64  `toml:"max_pdf_bytes"`  // PDF output ceiling
	ArchiveTTL   string `toml:"archive_ttl"`    // How long download archives are kept, e.g. "30m"
}

// CleanupConfig controls the scheduled purge of expired export archives
type CleanupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule format
}

// NewDefaultConfig returns the configuration defaults applied before any file
// or environment overrides.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Import: ImportConfig{
			MaxBodyBytes:      20 * 1024 * 1024, // 20 MB
			MaxDocuments:      500,
			MaxContentChars:   50000,
			RequestsPerMinute: 5,
		},
		Export: ExportConfig{
			MaxJSONBytes: 10 * 1024 * 1024, // 10 MB
			MaxCSVBytes:  5 * 1024 * 1024,  // 5 MB
			MaxPDFBytes:  20 * 1024 * 1024, // 20 MB
			ArchiveTTL:   "30m",
		},
		Cleanup: CleanupConfig{
			Enabled:  true,
			Schedule: "0 */10 * * * *", // Every 10 minutes
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SCRIBE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("SCRIBE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SCRIBE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if path := os.Getenv("SCRIBE_STORAGE_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if level := os.Getenv("SCRIBE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
