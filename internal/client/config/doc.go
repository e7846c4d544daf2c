// Package config loads runtime configuration for the HarvestHub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: HARVESTHUB_* variables, with a dotenv file (-e/-env, or
//     ./.env when present) filling in variables the process does not set.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:5000",
//	  "database_path": "harvesthub.db",
//	  "request_timeout": "10s",
//	  "notify_ttl": "3s",
//	  "redirect_delay": "800ms",
//	  "payment_delay": "1.2s",
//	  "claim_mode": "stub",
//	  "log_level": "warn",
//	  "log_file": ""
//	}
package config
