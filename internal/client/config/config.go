package config

import (
	"fmt"
	"net/url"
	"time"
)

// Claim modes.
const (
	// ClaimModeStub announces claims locally without telling the server.
	ClaimModeStub = "stub"
	// ClaimModeRemote submits claims to POST /match with an idempotency key.
	ClaimModeRemote = "remote"
)

// Config holds runtime settings for the HarvestHub CLI.
//
// Fields:
//   - APIBaseURL: root of the REST API, e.g. http://localhost:5000.
//   - DatabasePath: SQLite file holding the session; ":memory:" keeps it in RAM.
//   - RequestTimeout: upper bound for a single HTTP request.
//   - NotifyTTL: how long a notification stays visible.
//   - RedirectDelay: pause between a successful login and the dashboard.
//   - PaymentDelay: length of the simulated supplier payment.
//   - ClaimMode: ClaimModeStub or ClaimModeRemote.
//   - LogLevel: debug, info, warn or error.
//   - LogFile: write logs there instead of stderr when set.
type Config struct {
	APIBaseURL     string
	DatabasePath   string
	RequestTimeout time.Duration
	NotifyTTL      time.Duration
	RedirectDelay  time.Duration
	PaymentDelay   time.Duration
	ClaimMode      string
	LogLevel       string
	LogFile        string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:5000"
	c.DatabasePath = "harvesthub.db"
	c.RequestTimeout = 10 * time.Second
	c.NotifyTTL = 3 * time.Second
	c.RedirectDelay = 800 * time.Millisecond
	c.PaymentDelay = 1200 * time.Millisecond
	c.ClaimMode = ClaimModeStub
	c.LogLevel = "warn"
	c.LogFile = ""
}

// LoadConfig constructs a Config from defaults, then overlays the
// environment (and .env file), a JSON file, and command-line flags, each
// source overriding the previous one.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.APIBaseURL)
	}
	if c.ClaimMode != ClaimModeStub && c.ClaimMode != ClaimModeRemote {
		return fmt.Errorf("invalid claim mode %q (want %s or %s)", c.ClaimMode, ClaimModeStub, ClaimModeRemote)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}
