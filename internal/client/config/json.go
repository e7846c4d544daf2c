package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/harvesthub/internal/flagx"
	"github.com/dmitrijs2005/harvesthub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration, so they may be strings like "800ms" or integer nanoseconds.
// Absent fields leave the current value untouched.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	DatabasePath   *string         `json:"database_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	NotifyTTL      *timex.Duration `json:"notify_ttl"`
	RedirectDelay  *timex.Duration `json:"redirect_delay"`
	PaymentDelay   *timex.Duration `json:"payment_delay"`
	ClaimMode      *string         `json:"claim_mode"`
	LogLevel       *string         `json:"log_level"`
	LogFile        *string         `json:"log_file"`
}

// parseJson overlays cfg with the JSON file named by -c/-config. Without the
// flag it does nothing; read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.APIBaseURL, jc.APIBaseURL)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.ClaimMode, jc.ClaimMode)
	overlay(&cfg.LogLevel, jc.LogLevel)
	overlay(&cfg.LogFile, jc.LogFile)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.NotifyTTL != nil {
		cfg.NotifyTTL = jc.NotifyTTL.Duration
	}
	if jc.RedirectDelay != nil {
		cfg.RedirectDelay = jc.RedirectDelay.Duration
	}
	if jc.PaymentDelay != nil {
		cfg.PaymentDelay = jc.PaymentDelay.Duration
	}
}

func overlay(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
