package logging

import (
	"testing"

	"github.com/snapfeed/snapfeed/pkg/config"
)

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json format", config.LoggingConfig{Level: "INFO", Format: "json"}},
		{"text format", config.LoggingConfig{Level: "DEBUG", Format: "text"}},
		{"bad level falls back", config.LoggingConfig{Level: "NOISY", Format: "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := InitLogger(&tt.cfg); err != nil {
				t.Fatalf("InitLogger() error = %v", err)
			}
			if Logger == nil {
				t.Fatal("Logger should be set after InitLogger")
			}
		})
	}
}

func TestGetLoggerFallback(t *testing.T) {
	Logger = nil
	if GetLogger() == nil {
		t.Fatal("GetLogger should never return nil")
	}
}
