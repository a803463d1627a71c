package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Source.Address == "" {
		t.Errorf("expected Source.Address default to be set")
	}
	if cfg.Source.ReconnectSecs != 5 {
		t.Errorf("expected Source.ReconnectSecs default 5, got %d", cfg.Source.ReconnectSecs)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Logging.Level default info, got %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Prometheus.Port != 9090 {
		t.Errorf("expected Prometheus.Port default 9090, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Run("missing source address", func(t *testing.T) {
		cfg := &Config{Source: SourceConfig{ReconnectSecs: 1, ReadBufBytes: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for empty source.address")
		}
	})

	t.Run("invalid reconnect_secs", func(t *testing.T) {
		cfg := &Config{Source: SourceConfig{Address: "x:1", ReconnectSecs: 0, ReadBufBytes: 1}}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for non-positive reconnect_secs")
		}
	})

	t.Run("invalid prometheus port when enabled", func(t *testing.T) {
		cfg := &Config{
			Source: SourceConfig{Address: "x:1", ReconnectSecs: 1, ReadBufBytes: 1},
			Metrics: MetricsConfig{
				Prometheus: PrometheusConfig{Enabled: true, Port: 70000, Path: "/metrics"},
			},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for prometheus port out of range")
		}
	})

	t.Run("missing prometheus path when enabled", func(t *testing.T) {
		cfg := &Config{
			Source: SourceConfig{Address: "x:1", ReconnectSecs: 1, ReadBufBytes: 1},
			Metrics: MetricsConfig{
				Prometheus: PrometheusConfig{Enabled: true, Port: 9090, Path: ""},
			},
		}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for empty prometheus path")
		}
	})
}
