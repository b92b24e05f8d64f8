// Package config предоставляет конфигурацию tc-devsync для использования из Beat и других модулей.
// Теги yaml - для файла конфига, config - для распаковки libbeat; неизвестные ключи игнорируются.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config - конфигурация решателя отклонений и окружения демона.
type Config struct {
	DevSync DevSyncConfig `yaml:"devsync" config:"devsync"`
	API     APIConfig     `yaml:"api" config:"api"`
	Redis   RedisConfig   `yaml:"redis" config:"redis"`
}

// DevSyncConfig - окно истории, порог и применение коррекции.
type DevSyncConfig struct {
	HistorySize  int    `yaml:"history_size" config:"history_size"`   // сэмплов в окне
	MaxDeviation string `yaml:"max_deviation" config:"max_deviation"` // допустимое |отклонение|, например "50us"
	// KeepHistory - не сбрасывать окно после коррекции (по умолчанию окно обнуляется,
	// чтобы уже применённый уход не применялся повторно)
	KeepHistory bool        `yaml:"keep_history" config:"keep_history"`
	AdjustClock bool        `yaml:"adjust_clock" config:"adjust_clock"`
	StepLimit   string      `yaml:"step_limit" config:"step_limit"` // |коррекция| выше - step, иначе slew; пусто = 500ms
	Probe       ProbeConfig `yaml:"probe" config:"probe"`
}

// ProbeConfig - откуда берутся отклонения (pps или clock).
type ProbeConfig struct {
	Protocol   string `yaml:"protocol" config:"protocol"`
	Index      int    `yaml:"index" config:"index"`             // /dev/pps{N}
	CableDelay int    `yaml:"cable_delay" config:"cable_delay"` // нс, вычитается из отклонения PPS
	Timeout    string `yaml:"timeout" config:"timeout"`         // ожидание одного события PPS
	Interval   string `yaml:"interval" config:"interval"`       // период опроса для clock

	ReferenceClocks []ClockSource `yaml:"reference_clocks" config:"reference_clocks"`
	FallbackClocks  []ClockSource `yaml:"fallback_clocks" config:"fallback_clocks"`
}

// ClockSource - один опорный источник времени (protocol: gnss, nmea, ntp, ptp).
type ClockSource struct {
	Protocol     string `yaml:"protocol" config:"protocol"`
	Disable      bool   `yaml:"disable" config:"disable"`
	Device       string `yaml:"device" config:"device"` // serial для gnss/nmea, PHC (/dev/ptpN) для ptp
	Baud         int    `yaml:"baud" config:"baud"`
	IP           string `yaml:"ip" config:"ip"`
	PollInterval string `yaml:"pollinterval" config:"pollinterval"`
	Offset       int64  `yaml:"offset" config:"offset"` // нс, прибавляется к времени nmea
}

// APIConfig - HTTP статус и /metrics; пустой listen отключает сервер.
type APIConfig struct {
	Listen string `yaml:"listen" config:"listen"`
}

// RedisConfig - журнал решений; пустой addr отключает журнал.
type RedisConfig struct {
	Addr     string `yaml:"addr" config:"addr"`
	Password string `yaml:"password" config:"password"`
	DB       int    `yaml:"db" config:"db"`
	MaxItems int    `yaml:"max_items" config:"max_items"`
	TTL      string `yaml:"ttl" config:"ttl"`
}

// Протоколы probe
const (
	ProbePPS   = "pps"
	ProbeClock = "clock"
)

var (
	ErrHistorySize  = errors.New("devsync.history_size must be at least 1")
	ErrMaxDeviation = errors.New("devsync.max_deviation must be a non-negative duration")
	ErrProbe        = errors.New("devsync.probe.protocol must be pps or clock")
	ErrDuration     = errors.New("duration must be a valid non-negative value")
)

// Default возвращает конфиг по умолчанию
func Default() Config {
	return Config{
		DevSync: DevSyncConfig{
			HistorySize:  16,
			MaxDeviation: "50us",
			StepLimit:    "500ms",
			Probe: ProbeConfig{
				Protocol: ProbePPS,
				Timeout:  "2s",
				Interval: "1s",
			},
		},
		Redis: RedisConfig{
			MaxItems: 1000,
			TTL:      "1h",
		},
	}
}

// Validate проверяет конфиг без подстановки значений: плохая конфигурация - ошибка, а не clamp.
func (c *Config) Validate() error {
	if c.DevSync.HistorySize < 1 {
		return fmt.Errorf("%w: got %d", ErrHistorySize, c.DevSync.HistorySize)
	}
	if _, err := c.DevSync.MaxDeviationNs(); err != nil {
		return err
	}
	switch c.DevSync.Probe.Protocol {
	case ProbePPS, ProbeClock:
	default:
		return fmt.Errorf("%w: got %q", ErrProbe, c.DevSync.Probe.Protocol)
	}
	p := &c.DevSync.Probe
	durations := []struct{ key, value string }{
		{"devsync.step_limit", c.DevSync.StepLimit},
		{"devsync.probe.timeout", p.Timeout},
		{"devsync.probe.interval", p.Interval},
		{"redis.ttl", c.Redis.TTL},
	}
	for i, s := range p.ReferenceClocks {
		durations = append(durations, struct{ key, value string }{
			fmt.Sprintf("devsync.probe.reference_clocks[%d].pollinterval", i), s.PollInterval})
	}
	for i, s := range p.FallbackClocks {
		durations = append(durations, struct{ key, value string }{
			fmt.Sprintf("devsync.probe.fallback_clocks[%d].pollinterval", i), s.PollInterval})
	}
	for _, d := range durations {
		if err := CheckDuration(d.key, d.value); err != nil {
			return err
		}
	}
	return nil
}

// CheckDuration: пусто допустимо (значение по умолчанию), иначе строка должна разбираться и быть >= 0
func CheckDuration(key, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", key, ErrDuration, err)
	}
	if d < 0 {
		return fmt.Errorf("%s: %w: got %s", key, ErrDuration, value)
	}
	return nil
}

// MaxDeviationNs возвращает порог в наносекундах.
func (c *DevSyncConfig) MaxDeviationNs() (uint64, error) {
	d, err := time.ParseDuration(c.MaxDeviation)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMaxDeviation, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: got %s", ErrMaxDeviation, c.MaxDeviation)
	}
	return uint64(d.Nanoseconds()), nil
}

// StepLimitNs парсит step_limit (например "500ms", "15m") в наносекунды.
// Пустая строка или ошибка - 500 ms.
func (c *DevSyncConfig) StepLimitNs() int64 {
	return ParseDuration(c.StepLimit, 500*time.Millisecond).Nanoseconds()
}

// ParseDuration парсит длительность; пусто или ошибка - def.
// Значения из конфига к этому моменту уже проверены Validate.
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
