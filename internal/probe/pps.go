package probe

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultPPSTimeout = 2 * time.Second
	nsPerSecond       = int64(time.Second)
)

// ppsEvent - последний assert PPS
type ppsEvent struct {
	seq  uint32
	nsec int32
}

// ppsDevice - доступ к /dev/pps{N}; fetch блокируется не дольше timeout
type ppsDevice interface {
	fetch(timeout time.Duration) (ppsEvent, error)
	close() error
}

// PPS - опорное событие = фронт PPS, вторичные часы = системные часы, поставившие метку.
// Отклонение - дробная часть секунды метки, свёрнутая в (−0.5s, 0.5s], минус задержка кабеля.
type PPS struct {
	dev          ppsDevice
	index        int
	cableDelayNs int64
	timeout      time.Duration
	lastSeq      uint32
	seen         bool
}

// OpenPPS открывает /dev/pps{index}
func OpenPPS(index int, cableDelayNs int64, timeout time.Duration) (*PPS, error) {
	dev, err := openPPSDevice(index)
	if err != nil {
		return nil, fmt.Errorf("pps%d: %w", index, err)
	}
	return newPPS(dev, index, cableDelayNs, timeout), nil
}

func newPPS(dev ppsDevice, index int, cableDelayNs int64, timeout time.Duration) *PPS {
	if timeout <= 0 {
		timeout = defaultPPSTimeout
	}
	return &PPS{dev: dev, index: index, cableDelayNs: cableDelayNs, timeout: timeout}
}

// Name возвращает имя probe
func (p *PPS) Name() string {
	return fmt.Sprintf("pps:/dev/pps%d", p.index)
}

// Next ждёт новый assert (по assert_sequence) и возвращает отклонение.
func (p *PPS) Next(ctx context.Context) (int64, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ev, err := p.dev.fetch(p.timeout)
		if err != nil {
			return 0, err
		}
		if p.seen && ev.seq == p.lastSeq {
			continue
		}
		p.seen, p.lastSeq = true, ev.seq
		return FoldDeviation(int64(ev.nsec), p.cableDelayNs), nil
	}
}

// Close закрывает устройство
func (p *PPS) Close() error {
	return p.dev.close()
}

// FoldDeviation переводит дробную часть секунды метки в знаковое отклонение от ближайшей секунды.
// Импульс приходит позже на cableDelayNs, поэтому она вычитается до свёртки.
func FoldDeviation(nsec, cableDelayNs int64) int64 {
	d := (nsec - cableDelayNs) % nsPerSecond
	if d > nsPerSecond/2 {
		d -= nsPerSecond
	} else if d <= -nsPerSecond/2 {
		d += nsPerSecond
	}
	return d
}
