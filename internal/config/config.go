package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath          string
	LogDir            string
	FeedLogPath       string
	PrefsPath         string
	SnapshotPath      string
	BabyName          string
	BabyBirthDate     *time.Time
	DeviceName        string
	AllowBroadcasting bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve data paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		logDir = filepath.Join(dataPath, "logs")
	}

	if err := os.MkdirAll(dataPath, 0755); err != nil {
		log.Warn().Err(err).Str("path", dataPath).Msg("Failed to create data directory")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	cfg := &AppConfig{
		DataPath:          dataPath,
		LogDir:            logDir,
		FeedLogPath:       filepath.Join(dataPath, "feedlog.jsonl"),
		PrefsPath:         filepath.Join(dataPath, "preferences.json"),
		SnapshotPath:      filepath.Join(dataPath, "active-feed.json"),
		BabyName:          getEnv("BABY_NAME", ""),
		DeviceName:        getEnv("DEVICE_NAME", defaultDeviceName()),
		AllowBroadcasting: getEnvBool("ALLOW_BROADCASTING", false),
	}

	if raw := os.Getenv("BABY_BIRTH_DATE"); raw != "" {
		birth, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BABY_BIRTH_DATE %q (want YYYY-MM-DD): %w", raw, err)
		}
		cfg.BabyBirthDate = &birth
	}

	return cfg, nil
}

func defaultDeviceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "feedlog"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
