package config

import "fmt"

// validate validates the configuration.
func validate(cfg *Config) error {
	if cfg.Source.Address == "" {
		return fmt.Errorf("source.address is required")
	}
	if cfg.Source.ReconnectSecs <= 0 {
		return fmt.Errorf("source.reconnect_secs must be positive")
	}
	if cfg.Source.ReadBufBytes <= 0 {
		return fmt.Errorf("source.read_buf_bytes must be positive")
	}

	if cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
		if cfg.Metrics.Prometheus.Path == "" {
			return fmt.Errorf("metrics.prometheus.path is required when prometheus is enabled")
		}
	}

	return nil
}
