package config

import (
	"errors"
	"testing"
	"time"
)

func TestDefault_Valid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	ns, err := c.DevSync.MaxDeviationNs()
	if err != nil || ns != 50_000 {
		t.Errorf("MaxDeviationNs() = %d, %v; want 50000", ns, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{"zero history", func(c *Config) { c.DevSync.HistorySize = 0 }, ErrHistorySize},
		{"size one", func(c *Config) { c.DevSync.HistorySize = 1 }, nil},
		{"negative deviation", func(c *Config) { c.DevSync.MaxDeviation = "-1us" }, ErrMaxDeviation},
		{"bad deviation", func(c *Config) { c.DevSync.MaxDeviation = "ten" }, ErrMaxDeviation},
		{"zero deviation", func(c *Config) { c.DevSync.MaxDeviation = "0s" }, nil},
		{"unknown probe", func(c *Config) { c.DevSync.Probe.Protocol = "ptp" }, ErrProbe},
		{"clock probe", func(c *Config) { c.DevSync.Probe.Protocol = ProbeClock }, nil},
		{"negative step limit", func(c *Config) { c.DevSync.StepLimit = "-1s" }, ErrDuration},
		{"step limit typo", func(c *Config) { c.DevSync.StepLimit = "500 ms" }, ErrDuration},
		{"empty step limit", func(c *Config) { c.DevSync.StepLimit = "" }, nil},
		{"zero step limit", func(c *Config) { c.DevSync.StepLimit = "0s" }, nil},
		{"bad probe timeout", func(c *Config) { c.DevSync.Probe.Timeout = "2 sec" }, ErrDuration},
		{"negative probe interval", func(c *Config) { c.DevSync.Probe.Interval = "-1s" }, ErrDuration},
		{"bad redis ttl", func(c *Config) { c.Redis.TTL = "hour" }, ErrDuration},
		{"bad pollinterval", func(c *Config) {
			c.DevSync.Probe.ReferenceClocks = []ClockSource{{Protocol: "ntp", IP: "192.0.2.1", PollInterval: "4x"}}
		}, ErrDuration},
		{"negative fallback pollinterval", func(c *Config) {
			c.DevSync.Probe.FallbackClocks = []ClockSource{{Protocol: "ntp", IP: "192.0.2.1", PollInterval: "-4s"}}
		}, ErrDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			if err := c.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStepLimitNs(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 500_000_000},
		{"500ms", 500_000_000},
		{"15m", 15 * 60 * 1e9},
		{"1s", 1e9},
		{"invalid", 500_000_000},
	}
	for _, tt := range tests {
		c := DevSyncConfig{StepLimit: tt.in}
		if got := c.StepLimitNs(); got != tt.want {
			t.Errorf("StepLimitNs(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	if got := ParseDuration("", time.Second); got != time.Second {
		t.Errorf("пусто: %v", got)
	}
	if got := ParseDuration("250ms", time.Second); got != 250*time.Millisecond {
		t.Errorf("250ms: %v", got)
	}
	if got := ParseDuration("x", 3*time.Second); got != 3*time.Second {
		t.Errorf("ошибка: %v", got)
	}
}
