// Package source - опорные источники времени для clock-probe (GNSS, NTP).
package source

import "time"

// TimeSource - источник опорного времени
type TimeSource interface {
	// Name возвращает имя источника для логов
	Name() string
	// Protocol возвращает протокол: gnss, ntp
	Protocol() string
	// GetTime возвращает текущее время по источнику и статус
	GetTime() (time.Time, Status)
	// Close освобождает ресурсы
	Close() error
}

// Status - состояние источника
type Status int

const (
	StatusUnavailable Status = iota
	StatusUnlocked           // есть данные, но не locked (например GNSS без fix)
	StatusLocked             // источник пригоден как опорный
)

func (s Status) String() string {
	switch s {
	case StatusUnavailable:
		return "unavailable"
	case StatusUnlocked:
		return "unlocked"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// IsUsable возвращает true, если по источнику можно мерить отклонение
func (s Status) IsUsable() bool {
	return s == StatusLocked
}
