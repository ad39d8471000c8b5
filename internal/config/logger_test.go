package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{"unset settings default to info json", "", "", false},
		{"debug json", "debug", "json", false},
		{"warn console", "warn", "console", false},
		{"error level", "error", "json", false},
		{"invalid level", "banana", "json", true},
		{"invalid format", "info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			if tt.level != "" {
				v.Set("logging.level", tt.level)
			}
			if tt.format != "" {
				v.Set("logging.format", tt.format)
			}

			logger, err := NewLogger(v)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			if logger == nil {
				t.Fatal("expected non-nil logger")
			}
		})
	}
}

func TestNewLogger_FromLoadedDefaults(t *testing.T) {
	v, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	logger, err := NewLogger(v)
	if err != nil {
		t.Fatalf("NewLogger with loaded defaults: %v", err)
	}
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}
