package clocksync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/api"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/clockadj"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/metrics"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/persistence"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/probe"
	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
)

// ErrNoConfig - RunDaemon вызван без конфига
var ErrNoConfig = errors.New("clocksync: config is required")

// RunDaemon запускает решатель по конфигу до отмены ctx (probe, журнал, HTTP API).
func RunDaemon(ctx context.Context, cfg *pkgconfig.Config, quiet bool) error {
	return RunDaemonWithOptions(ctx, cfg, quiet, Options{})
}

// RunDaemonWithOptions - как RunDaemon; opts дополняют собранное из конфига
// (Beat передаёт OnDecision). Заданный opts.Journal заменяет Redis из конфига.
func RunDaemonWithOptions(ctx context.Context, cfg *pkgconfig.Config, quiet bool, opts Options) error {
	if cfg == nil {
		return ErrNoConfig
	}
	logger.Quiet = quiet
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, err := probe.New(cfg.DevSync.Probe)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer p.Close()

	if opts.Session == "" {
		opts.Session = uuid.NewString()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Journal == nil && cfg.Redis.Addr != "" {
		store := persistence.NewDecisionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			opts.Session, cfg.Redis.MaxItems, pkgconfig.ParseDuration(cfg.Redis.TTL, time.Hour))
		defer store.Close()
		if err := store.Check(ctx); err != nil {
			// журнал необязателен: ошибки записи будут в journal_errors_total
			logger.Error("redis %s: %v", cfg.Redis.Addr, err)
		} else {
			logger.Info("redis: журнал %s", persistence.DecisionsKey(opts.Session))
		}
		opts.Journal = store
	}
	if cfg.DevSync.AdjustClock {
		if ppm, err := clockadj.GetFrequency(); err == nil {
			logger.Info("clockadj: текущая частота %.3f ppm", ppm)
		}
	}

	d, err := NewDaemon(cfg.DevSync, p, opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	if cfg.API.Listen != "" {
		var lister api.DecisionLister
		if l, ok := opts.Journal.(api.DecisionLister); ok {
			lister = l
		}
		srv := api.NewServer(d, lister, d.Metrics().Handler(), cfg.Redis.MaxItems)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, cfg.API.Listen); err != nil {
				logger.Error("api: %v", err)
			}
		}()
	}

	err = d.Run(ctx)
	cancel()
	wg.Wait()
	return err
}
