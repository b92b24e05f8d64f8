// Package clocksync предоставляет цикл решателя отклонений для запуска из CLI и встраивания в Beat.
package clocksync

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/clockadj"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/diag"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/metrics"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/probe"
	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/model"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/morethanhalf"
)

const probeRetryDelay = time.Second

// Journal сохраняет решения (Redis); ошибка записи не останавливает цикл
type Journal interface {
	Save(ctx context.Context, d model.Decision) error
}

// Options - внешние участники цикла; все поля необязательны.
type Options struct {
	// OnDecision вызывается из цикла на каждое ненулевое решение
	OnDecision func(model.Decision)
	Journal    Journal
	// Adjuster используется только при adjust_clock; nil - системные часы
	Adjuster clockadj.Adjuster
	Metrics  *metrics.Metrics
	// Session - идентификатор запуска; пусто - новый uuid
	Session string
	Now     func() time.Time
}

// Daemon владеет историей и решателем; Process вызывается только из Run.
type Daemon struct {
	cfg          pkgconfig.DevSyncConfig
	probe        probe.Probe
	opts         Options
	metrics      *metrics.Metrics
	maxDeviation uint64
	stepLimitNs  int64

	buf    []int64
	engine morethanhalf.Sync

	mu          sync.RWMutex
	samples     uint64
	corrections uint64
	probeErrors uint64
	last        *model.Decision
	snap        model.Snapshot
}

// NewDaemon проверяет окно и порог и готовит обнулённую историю.
func NewDaemon(cfg pkgconfig.DevSyncConfig, p probe.Probe, opts Options) (*Daemon, error) {
	maxDeviation, err := cfg.MaxDeviationNs()
	if err != nil {
		return nil, err
	}
	if err := pkgconfig.CheckDuration("devsync.step_limit", cfg.StepLimit); err != nil {
		return nil, err
	}
	buf := make([]int64, cfg.HistorySize)
	if err := morethanhalf.Validate(buf, cfg.HistorySize); err != nil {
		return nil, err
	}
	if opts.Session == "" {
		opts.Session = uuid.NewString()
	}
	if opts.Adjuster == nil {
		opts.Adjuster = clockadj.System{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	d := &Daemon{
		cfg:          cfg,
		probe:        p,
		opts:         opts,
		metrics:      m,
		maxDeviation: maxDeviation,
		stepLimitNs:  cfg.StepLimitNs(),
		buf:          buf,
	}
	d.engine.Reset(d.buf, cfg.HistorySize, maxDeviation)
	d.snap = d.buildSnapshot(0, d.engine.History().Ordered(nil), model.WindowStats{})
	return d, nil
}

// Session возвращает идентификатор запуска
func (d *Daemon) Session() string { return d.opts.Session }

// Metrics возвращает метрики демона
func (d *Daemon) Metrics() *metrics.Metrics { return d.metrics }

// Run читает сэмплы probe до отмены ctx. Ошибки чтения логируются и считаются,
// цикл продолжается; ErrUnsupported завершает Run.
func (d *Daemon) Run(ctx context.Context) error {
	logger.Info("devsync: session=%s probe=%s history=%d max_deviation=%dns adjust_clock=%v",
		d.opts.Session, d.probe.Name(), d.cfg.HistorySize, d.maxDeviation, d.cfg.AdjustClock)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		deviation, err := d.probe.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, probe.ErrUnsupported) {
				return err
			}
			d.probeError(err)
			if errors.Is(err, probe.ErrTimeout) {
				continue
			}
			// ErrNoReference и ошибки устройства: не крутим цикл вхолостую
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(probeRetryDelay):
			}
			continue
		}
		d.Observe(ctx, deviation)
	}
}

// Observe обрабатывает один сэмпл; возвращает решение, если коррекция ненулевая.
func (d *Daemon) Observe(ctx context.Context, deviation int64) (model.Decision, bool) {
	correction := d.engine.Process(deviation)
	d.metrics.ObserveSample(deviation, d.engine.Misses(), d.engine.OutOfSyncSum(), d.engine.TotalSum())
	logger.Debug("deviation=%d misses=%d/%d correction=%d",
		deviation, d.engine.Misses(), d.cfg.HistorySize, correction)

	if correction == 0 {
		d.publish(deviation, nil)
		return model.Decision{}, false
	}
	dec := d.decide(ctx, correction)
	d.publish(deviation, &dec)
	return dec, true
}

func (d *Daemon) decide(ctx context.Context, correction int64) model.Decision {
	dec := model.Decision{
		Session:      d.opts.Session,
		Time:         d.opts.Now().UTC(),
		Probe:        d.probe.Name(),
		Correction:   correction,
		Misses:       d.engine.Misses(),
		OutOfSyncSum: d.engine.OutOfSyncSum(),
		TotalSum:     d.engine.TotalSum(),
		HistorySize:  d.cfg.HistorySize,
		Applied:      string(clockadj.ModeNone),
	}
	if d.cfg.AdjustClock {
		mode, err := clockadj.Apply(d.opts.Adjuster, correction, d.stepLimitNs)
		dec.Applied = string(mode)
		if err != nil {
			dec.Error = err.Error()
			logger.Error("devsync: %s %dns: %v", mode, -correction, err)
		}
	}
	d.metrics.ObserveCorrection(correction, dec.Applied)
	logger.Info("devsync: correction %dns (misses %d/%d, applied %s)",
		correction, dec.Misses, dec.HistorySize, dec.Applied)

	if d.opts.Journal != nil {
		if err := d.opts.Journal.Save(ctx, dec); err != nil {
			d.metrics.JournalError()
			logger.Error("devsync: journal: %v", err)
		}
	}
	if d.opts.OnDecision != nil {
		d.opts.OnDecision(dec)
	}

	// уже учтённый уход не должен примениться повторно
	if !d.cfg.KeepHistory {
		clear(d.buf)
		d.engine.Reset(d.buf, d.cfg.HistorySize, d.maxDeviation)
	}
	return dec
}

func (d *Daemon) probeError(err error) {
	d.metrics.ProbeError()
	d.mu.Lock()
	d.probeErrors++
	d.snap.ProbeErrors = d.probeErrors
	d.mu.Unlock()
	logger.Error("devsync: probe %s: %v", d.probe.Name(), err)
}

// publish считает сэмпл и обновляет снимок
func (d *Daemon) publish(deviation int64, dec *model.Decision) {
	window := d.engine.History().Ordered(make([]int64, 0, d.cfg.HistorySize))
	stats := diag.Summarize(window)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.samples++
	if dec != nil {
		d.corrections++
		c := *dec
		d.last = &c
	}
	d.snap = d.buildSnapshot(deviation, window, stats)
}

// buildSnapshot вызывается под d.mu
func (d *Daemon) buildSnapshot(deviation int64, window []int64, stats model.WindowStats) model.Snapshot {
	return model.Snapshot{
		Session:         d.opts.Session,
		Probe:           d.probe.Name(),
		Samples:         d.samples,
		Corrections:     d.corrections,
		ProbeErrors:     d.probeErrors,
		LastDeviation:   deviation,
		LastCorrection:  d.last,
		Misses:          d.engine.Misses(),
		OutOfSyncSum:    d.engine.OutOfSyncSum(),
		TotalSum:        d.engine.TotalSum(),
		HalfHistorySize: d.engine.HalfHistorySize(),
		MaxDeviation:    d.engine.MaxDeviation(),
		Window:          window,
		Stats:           stats,
		UpdatedAt:       d.opts.Now().UTC(),
	}
}

// Snapshot возвращает копию последнего снимка; безопасен из любой горутины.
func (d *Daemon) Snapshot() model.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.snap
	s.Window = append([]int64(nil), d.snap.Window...)
	if d.snap.LastCorrection != nil {
		c := *d.snap.LastCorrection
		s.LastCorrection = &c
	}
	return s
}
