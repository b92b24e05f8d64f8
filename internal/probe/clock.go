package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/clockselect"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
)

const defaultClockInterval = time.Second

// Clock - опорное событие = тик interval, опорное время от выбранного TimeSource,
// вторичные часы - системные.
type Clock struct {
	election *clockselect.Election
	ticker   *time.Ticker
	interval time.Duration
	now      func() time.Time
	last     string
}

// NewClock создаёт clock-probe поверх Election
func NewClock(e *clockselect.Election, interval time.Duration) *Clock {
	if interval <= 0 {
		interval = defaultClockInterval
	}
	return &Clock{
		election: e,
		ticker:   time.NewTicker(interval),
		interval: interval,
		now:      time.Now,
	}
}

// Name возвращает имя probe
func (c *Clock) Name() string {
	return fmt.Sprintf("clock:%v", c.interval)
}

// Next ждёт тик, опрашивает источники и возвращает local − reference.
func (c *Clock) Next(ctx context.Context) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-c.ticker.C:
	}
	active, ref := c.election.Select()
	local := c.now()
	if active == nil {
		c.last = ""
		return 0, ErrNoReference
	}
	if name := active.Name(); name != c.last {
		logger.Info("опорный источник: %s", name)
		c.last = name
	}
	return local.Sub(ref).Nanoseconds(), nil
}

// Close останавливает тикер и закрывает источники
func (c *Clock) Close() error {
	c.ticker.Stop()
	var firstErr error
	for _, s := range c.election.Sources() {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
