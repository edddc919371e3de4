package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:          "http://127.0.0.1:8080",
			Timeout:          2 * time.Second,
			UserAgent:        "sift-test/1.0",
			CancelSuperseded: true,
		},
		Storage: StorageConfig{
			Path:         ":memory:", // tests open their own store in t.TempDir()
			Timeout:      1 * time.Second,
			HistoryLimit: 10,
		},
		UI:     defaultConfig().UI,
		Opener: defaultConfig().Opener,
		Keys:   defaultConfig().Keys,
		Log: LogConfig{
			Level: "off",
		},
	}
}
