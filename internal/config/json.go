package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration unmarshals from either a Go duration string ("30s") or an
// integer number of nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// jsonConfig is the on-disk form. Absent fields leave the current value.
type jsonConfig struct {
	APIURL         string    `json:"api_url"`
	WebURL         string    `json:"web_url"`
	DataDir        string    `json:"data_dir"`
	TokenStore     string    `json:"token_store"`
	RequestTimeout *Duration `json:"request_timeout"`
	LogFile        string    `json:"log_file"`
	LogLevel       string    `json:"log_level"`
}

// parseJSON overlays cfg with the file at path. A missing file is an error
// only when the path was given explicitly.
func parseJSON(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.APIURL, jc.APIURL)
	setString(&cfg.WebURL, jc.WebURL)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.TokenStore, jc.TokenStore)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
