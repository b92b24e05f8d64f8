// Package config читает YAML-конфиг tc-devsync (формат pkg/config).
package config

import (
	"fmt"
	"os"

	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
	"gopkg.in/yaml.v3"
)

// Умолчания для последовательных опорных источников
const (
	defaultDevice = "/dev/ttyS0"
	defaultBaud   = 9600
)

// Load читает конфиг из YAML. Отсутствующие ключи берутся из pkgconfig.Default();
// явно заданные значения не корректируются - проверка в Validate.
func Load(path string) (*pkgconfig.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse разбирает YAML-данные конфига и проверяет результат.
func Parse(data []byte) (*pkgconfig.Config, error) {
	c := pkgconfig.Default()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *pkgconfig.Config) {
	p := &c.DevSync.Probe
	for _, list := range [][]pkgconfig.ClockSource{p.ReferenceClocks, p.FallbackClocks} {
		for i := range list {
			s := &list[i]
			if s.Protocol != "gnss" && s.Protocol != "nmea" {
				continue
			}
			if s.Device == "" {
				s.Device = defaultDevice
			}
			if s.Baud == 0 {
				s.Baud = defaultBaud
			}
		}
	}
}
