package config

import "strings"

// Environment variables read by parseEnv. TASKFLOW_TOKEN is read by the
// token store itself.
const (
	EnvAPIURL     = "TASKFLOW_API_URL"
	EnvWebURL     = "TASKFLOW_WEB_URL"
	EnvTokenStore = "TASKFLOW_TOKEN_STORE"
	EnvLogFile    = "TASKFLOW_LOG_FILE"
	EnvLogLevel   = "TASKFLOW_LOG_LEVEL"
)

func getEnv(getenv func(string) string, key, fallback string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseEnv(cfg *Config, getenv func(string) string) {
	cfg.APIURL = getEnv(getenv, EnvAPIURL, cfg.APIURL)
	cfg.WebURL = getEnv(getenv, EnvWebURL, cfg.WebURL)
	cfg.TokenStore = getEnv(getenv, EnvTokenStore, cfg.TokenStore)
	cfg.LogFile = getEnv(getenv, EnvLogFile, cfg.LogFile)
	cfg.LogLevel = getEnv(getenv, EnvLogLevel, cfg.LogLevel)
}
