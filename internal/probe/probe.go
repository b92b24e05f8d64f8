// Package probe измеряет отклонение вторичного события от опорного, по одному сэмплу на событие.
package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/clockselect"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/source"
	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
)

var (
	// ErrTimeout - опорное событие не пришло за timeout
	ErrTimeout = errors.New("probe: reference event timeout")
	// ErrNoReference - нет пригодного опорного источника
	ErrNoReference = errors.New("probe: no usable reference clock")
	// ErrUnsupported - probe недоступен на этой платформе
	ErrUnsupported = errors.New("probe: not supported on this platform")
)

// Probe - источник сэмплов отклонения.
type Probe interface {
	Name() string
	// Next блокируется до следующего опорного события и возвращает
	// отклонение secondary − reference в наносекундах.
	Next(ctx context.Context) (int64, error)
	Close() error
}

// New создаёт Probe по конфигу devsync.probe
func New(c pkgconfig.ProbeConfig) (Probe, error) {
	switch c.Protocol {
	case pkgconfig.ProbePPS:
		return OpenPPS(c.Index, int64(c.CableDelay), pkgconfig.ParseDuration(c.Timeout, defaultPPSTimeout))
	case pkgconfig.ProbeClock:
		reference := openSources("reference", c.ReferenceClocks)
		fallback := openSources("fallback", c.FallbackClocks)
		if len(reference) == 0 && len(fallback) == 0 {
			return nil, fmt.Errorf("clock probe: %w", ErrNoReference)
		}
		return NewClock(clockselect.NewElection(reference, fallback), pkgconfig.ParseDuration(c.Interval, defaultClockInterval)), nil
	default:
		return nil, fmt.Errorf("unknown probe protocol: %s", c.Protocol)
	}
}

func openSources(kind string, list []pkgconfig.ClockSource) []source.TimeSource {
	var out []source.TimeSource
	for _, c := range list {
		if c.Disable {
			continue
		}
		s, err := source.NewFromClockSource(c)
		if err != nil {
			logger.Info("%s %s: %v", kind, c.Protocol, err)
			continue
		}
		out = append(out, s)
	}
	return out
}
