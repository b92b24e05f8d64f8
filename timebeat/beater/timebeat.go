// Package beater реализует интерфейс Beater для Timebeat (libbeat v7).
package beater

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/beats/v7/libbeat/beat"
	"github.com/elastic/beats/v7/libbeat/common"
	"github.com/elastic/beats/v7/libbeat/logp"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/clocksync"
	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/model"
)

// Timebeat реализует beat.Beater.
type Timebeat struct {
	done   chan struct{}
	config *pkgconfig.Config
	client beat.Client
}

// New создаёт Beater из конфигурации Beat.
func New(b *beat.Beat, cfg *common.Config) (beat.Beater, error) {
	sub, err := cfg.Child("timebeat", -1)
	if err != nil || sub == nil {
		return nil, fmt.Errorf("конфиг timebeat не найден: %v", err)
	}
	config := pkgconfig.Default()
	if err := sub.Unpack(&config); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфига timebeat: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	bt := &Timebeat{
		done:   make(chan struct{}),
		config: &config,
	}
	return bt, nil
}

// Run запускает решатель tc-devsync до Stop() и публикует каждое решение.
func (bt *Timebeat) Run(b *beat.Beat) error {
	logp.Info("timebeat запущен (devsync на базе tc-devsync)")
	var err error
	bt.client, err = b.Publisher.Connect()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-bt.done
		cancel()
	}()

	opts := clocksync.Options{OnDecision: bt.publish}
	err = clocksync.RunDaemonWithOptions(ctx, bt.config, true, opts)
	if err != nil && !errors.Is(err, context.Canceled) {
		logp.Warn("devsync завершён: %v", err)
	}
	return nil
}

func (bt *Timebeat) publish(d model.Decision) {
	event := beat.Event{
		Timestamp: d.Time,
		Fields: common.MapStr{
			"type": "devsync.decision",
			"devsync": common.MapStr{
				"session":         d.Session,
				"probe":           d.Probe,
				"correction_ns":   d.Correction,
				"misses":          d.Misses,
				"out_of_sync_sum": d.OutOfSyncSum,
				"total_sum":       d.TotalSum,
				"history_size":    d.HistorySize,
				"applied":         d.Applied,
			},
		},
	}
	if d.Error != "" {
		event.PutValue("devsync.error", d.Error)
	}
	bt.client.Publish(event)
}

// Stop останавливает Run.
func (bt *Timebeat) Stop() {
	if bt.client != nil {
		bt.client.Close()
	}
	close(bt.done)
}
