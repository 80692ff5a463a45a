package common

import (
	"strings"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultEngineConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *EngineConfig)
		errMsg string
	}{
		{"segment too small", func(c *EngineConfig) { c.SegmentSizeBytes = 5 }, "segment size"},
		{"log smaller than segment", func(c *EngineConfig) { c.LogSizeBytes = c.SegmentSizeBytes - 1 }, "log size"},
		{"no cores", func(c *EngineConfig) { c.Cores = 0 }, "cores"},
		{"no queue", func(c *EngineConfig) { c.QueueCapacity = 0 }, "queue capacity"},
		{"bad log level", func(c *EngineConfig) { c.LogLevel = "verbose" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.errMsg)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := EngineConfig{LogLevel: "info"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() of the zero config should fail")
	}
	for _, want := range []string{"segment size", "cores", "queue capacity"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error is missing %q: %v", want, err)
		}
	}
}

func TestString(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.Cores = 4
	out := cfg.String()

	for _, want := range []string{"LOG", "RUNTIME", "64.0 MiB", "1.0 MiB", "256.0 MiB", "Segments per Log"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() is missing %q:\n%s", want, out)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "warn", "warning", "error"} {
		if _, err := ParseLogLevel(level); err != nil {
			t.Errorf("ParseLogLevel(%q) error = %v", level, err)
		}
	}
	if _, err := ParseLogLevel("trace"); err == nil {
		t.Error("ParseLogLevel(trace) should fail")
	}
}
