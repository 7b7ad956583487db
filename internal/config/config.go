package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	InputPath   string
	OutputPath  string
	SummaryPath string
	ProfilePath string

	LedgerPath      string
	MetricsTextfile string

	LogLevel string
	LogJSON  bool

	RunsLimit int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		InputPath:   getEnv("FOODCLEAN_INPUT", filepath.Join(cwd, "data", "openfood.csv")),
		OutputPath:  getEnv("FOODCLEAN_OUTPUT", filepath.Join(cwd, "out", "cleaned_openfood.csv")),
		SummaryPath: getEnv("FOODCLEAN_SUMMARY", filepath.Join(cwd, "out", "cleaning_summary.log")),
		ProfilePath: getEnv("FOODCLEAN_PROFILE", ""),

		LedgerPath:      getEnv("FOODCLEAN_LEDGER_PATH", ""),
		MetricsTextfile: getEnv("FOODCLEAN_METRICS_TEXTFILE", ""),

		LogLevel: getEnv("FOODCLEAN_LOG_LEVEL", "info"),
		LogJSON:  getEnvBool("FOODCLEAN_LOG_JSON", false),

		RunsLimit: getEnvInt("FOODCLEAN_RUNS_LIMIT", 20),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
