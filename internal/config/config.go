// Package config loads runtime configuration from a .env file overlaid with
// the process environment, the way the teacher's main does it.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tsanomaly/internal/notify"
)

// Config holds the settings the demo server needs at startup.
type Config struct {
	Port                  string
	DefaultAlgorithm      string
	ScorePercentThreshold float64
	RescoreCronSpec       string
	NotifyChannels        []string
	Notify                notify.Config
}

// Load reads .env (if present — a missing file is not an error) and then
// overlays any matching environment variables, so a deployment can override
// individual settings without editing the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	minInterval := getEnvFloat("TSANOMALY_NOTIFY_MIN_INTERVAL_SECONDS", 300)

	cfg := &Config{
		Port:                  getEnv("TSANOMALY_PORT", "8080"),
		DefaultAlgorithm:      getEnv("TSANOMALY_DEFAULT_ALGORITHM", "default_detector"),
		ScorePercentThreshold: getEnvFloat("TSANOMALY_SCORE_PERCENT_THRESHOLD", 0.1),
		RescoreCronSpec:       getEnv("TSANOMALY_RESCORE_CRON", "@every 1m"),
		NotifyChannels:        getEnvList("TSANOMALY_NOTIFY_CHANNELS", nil),
		Notify: notify.Config{
			Slack: notify.SlackConfig{
				WebhookURL: getEnv("TSANOMALY_SLACK_WEBHOOK_URL", ""),
			},
			Webhook: notify.WebhookConfig{
				URLs: getEnvURLMap("TSANOMALY_WEBHOOK_URLS"),
			},
			Defaults: notify.DefaultConfig{
				MinInterval: time.Duration(minInterval * float64(time.Second)),
			},
		},
	}
	return cfg, nil
}

// getEnvList splits a comma-separated environment variable into a slice,
// trimming whitespace around each entry; an unset or empty variable
// returns def.
func getEnvList(key string, def []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvURLMap parses a "name=url,name=url" environment variable into a
// map, the shape notify.WebhookConfig.URLs expects.
func getEnvURLMap(key string) map[string]string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(v, ",") {
		name, url, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		out[strings.TrimSpace(name)] = strings.TrimSpace(url)
	}
	return out
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
