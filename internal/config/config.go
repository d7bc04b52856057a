package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"clinic-funnel/internal/report"
	"clinic-funnel/internal/sheet"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Sheet               sheet.Config
	DataPath            string
	LogDir              string
	CacheDir            string
	PTAThreshold        float64
	EnableMermaidCharts bool
}

// Load reads .env files (binary directory first, then the working directory)
// and resolves the configuration from the environment.
func Load() (*AppConfig, error) {
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return fromEnv(exeDir), nil
}

// fromEnv builds the configuration from the current environment only.
func fromEnv(exeDir string) *AppConfig {
	dataPath := getEnv("DATA_PATH", "")
	if dataPath == "" {
		dataPath = "."
		if exeDir != "" {
			dataPath = exeDir
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	cacheDir := filepath.Join(dataPath, "cache")

	for _, dir := range []string{logDir, cacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("Failed to create directory")
		}
	}

	return &AppConfig{
		Sheet: sheet.Config{
			SpreadsheetID:   getEnv("GOOGLE_SHEET_ID", ""),
			Range:           getEnv("GOOGLE_SHEET_RANGE", ""),
			APIKey:          getEnv("GOOGLE_API_KEY", ""),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			CSVURL:          getEnv("SHEET_CSV_URL", ""),
			RequestDelay:    time.Duration(getEnvFloat("SHEET_REQUEST_DELAY_SECONDS", 1) * float64(time.Second)),
			CacheTTL:        time.Duration(getEnvFloat("SHEET_CACHE_TTL_MINUTES", 10) * float64(time.Minute)),
		},
		DataPath:            dataPath,
		LogDir:              logDir,
		CacheDir:            cacheDir,
		PTAThreshold:        getEnvFloat("PTA_THRESHOLD", report.DefaultPTAThreshold),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}
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

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}
