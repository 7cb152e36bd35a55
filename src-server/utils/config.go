package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	vobjectutils "vobject/src-server/vobject/utils"
)

type Config struct {
	port         string
	databasePath string
	logLevel     slog.Level

	foldWidth    int
	maxBodyBytes int64

	metricCollectionInterval time.Duration
	sourceRefreshInterval    time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		databasePath: func() string {
			databasePath := os.Getenv("DATABASE_PATH")
			if databasePath == "" {
				databasePath = "./vobject.db"
			}
			if databasePath != ":memory:" {
				databasePath = filepath.Clean(databasePath)
			}
			slog.Debug("env", "DATABASE_PATH", databasePath)
			return databasePath
		}(),
		logLevel: ParseLogLevel(os.Getenv("LOG_LEVEL")),

		foldWidth: func() int {
			foldWidthStr := os.Getenv("FOLD_WIDTH")
			if foldWidthStr == "" {
				return vobjectutils.DefaultFoldWidth
			}
			foldWidth, err := strconv.Atoi(foldWidthStr)
			if err != nil {
				slog.Error("invalid FOLD_WIDTH", "error", err)
				os.Exit(1)
			}
			if foldWidth < vobjectutils.MinFoldWidth {
				slog.Error("FOLD_WIDTH is too small", "min", vobjectutils.MinFoldWidth, "got", foldWidth)
				os.Exit(1)
			}
			slog.Debug("env", "FOLD_WIDTH", foldWidth)
			return foldWidth
		}(),
		maxBodyBytes: func() int64 {
			maxBodyBytesStr := os.Getenv("MAX_BODY_BYTES")
			if maxBodyBytesStr == "" {
				return 1 << 20
			}
			maxBodyBytes, err := strconv.ParseInt(maxBodyBytesStr, 10, 64)
			if err != nil || maxBodyBytes <= 0 {
				slog.Error("invalid MAX_BODY_BYTES", "value", maxBodyBytesStr, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "MAX_BODY_BYTES", maxBodyBytes)
			return maxBodyBytes
		}(),

		metricCollectionInterval: func() time.Duration {
			interval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if interval == "" {
				interval = "15s"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", duration)
			return duration
		}(),
		sourceRefreshInterval: func() time.Duration {
			interval := os.Getenv("SOURCE_REFRESH_INTERVAL")
			if interval == "" {
				interval = "1h"
			}
			duration, err := time.ParseDuration(interval)
			if err != nil || duration <= 0 {
				slog.Error("invalid SOURCE_REFRESH_INTERVAL", "value", interval, "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "SOURCE_REFRESH_INTERVAL", duration)
			return duration
		}(),
	}
}

// Map a LOG_LEVEL value to a slog level, defaults to debug
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./vobject.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get LOG_LEVEL env
func (c *Config) GetLogLevel() slog.Level {
	return c.logLevel
}

// Get FOLD_WIDTH env, default to 75
func (c *Config) GetFoldWidth() int {
	return c.foldWidth
}

// Get MAX_BODY_BYTES env, default to 1 MiB
func (c *Config) GetMaxBodyBytes() int64 {
	return c.maxBodyBytes
}

// Get METRIC_COLLECTION_INTERVAL env, default to 15s
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}

// Get SOURCE_REFRESH_INTERVAL env, default to 1h
func (c *Config) GetSourceRefreshInterval() time.Duration {
	return c.sourceRefreshInterval
}
