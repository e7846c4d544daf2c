package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/harvesthub/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAPIURL         = "HARVESTHUB_API_URL"
	EnvDatabase       = "HARVESTHUB_DB"
	EnvRequestTimeout = "HARVESTHUB_REQUEST_TIMEOUT"
	EnvClaimMode      = "HARVESTHUB_CLAIM_MODE"
	EnvLogLevel       = "HARVESTHUB_LOG_LEVEL"
	EnvLogFile        = "HARVESTHUB_LOG_FILE"
)

// parseEnv loads a dotenv file (path from -e/-env, otherwise ".env" in the
// working directory, silently skipped when missing) and then copies the
// HARVESTHUB_* variables that are set into cfg. Variables already present in
// the process environment win over the file.
//
// HARVESTHUB_REQUEST_TIMEOUT accepts a Go duration ("5s") or whole seconds.
func parseEnv(cfg *Config) {
	envFile := flagx.EnvFileFlags()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}

	setString(&cfg.APIBaseURL, EnvAPIURL)
	setString(&cfg.DatabasePath, EnvDatabase)
	setString(&cfg.ClaimMode, EnvClaimMode)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFile, EnvLogFile)

	if v, ok := os.LookupEnv(EnvRequestTimeout); ok {
		d, err := parseSecondsOrDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RequestTimeout = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func parseSecondsOrDuration(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
