// tc-devsync - решатель синхронизации изохронных событий по правилу «больше половины окна».
//
// Демон читает отклонение вторичного события от опорного (PPS или часы против GNSS/NTP),
// ведёт окно отклонений и при устойчивом уходе выдаёт коррекцию; по желанию применяет её
// к системным часам. Решения пишутся в лог, Redis и отдаются по HTTP (/status, /metrics).
//
// Использование:
//
//	tc-devsync -run -config tc-devsync.yml            - запуск daemon
//	tc-devsync -replay deviations.txt -history-size 8 - офлайн: отклонение на строку → коррекция на строку
//	tc-devsync -replay - -verify < deviations.txt     - то же из stdin со сверкой агрегатов
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/shiwa/timecard-mini/tc-devsync/internal/config"
	"github.com/shiwa/timecard-mini/tc-devsync/internal/logger"
	"github.com/shiwa/timecard-mini/tc-devsync/pkg/clocksync"
	pkgconfig "github.com/shiwa/timecard-mini/tc-devsync/pkg/config"
)

const defaultConfigPath = "tc-devsync.yml"

func main() {
	run := flag.Bool("run", false, "запуск daemon: probe + решатель + HTTP/Redis")
	configPath := flag.String("config", "", "путь к YAML конфигу (по умолчанию "+defaultConfigPath+")")
	replay := flag.String("replay", "", "файл отклонений (нс, по одному на строку) или - для stdin")
	historySize := flag.Int("history-size", 0, "размер окна (переопределяет config)")
	maxDeviation := flag.String("max-deviation", "", "допустимое отклонение, например 50us (переопределяет config)")
	verify := flag.Bool("verify", false, "replay: сверять агрегаты с пересчётом окна после каждого сэмпла")
	verbose := flag.Bool("verbose", false, "логировать каждый сэмпл")
	quiet := flag.Bool("quiet", false, "меньше вывода")
	flag.Parse()

	logger.Quiet = *quiet
	logger.Verbose = *verbose

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *historySize != 0 {
		cfg.DevSync.HistorySize = *historySize
	}
	if *maxDeviation != "" {
		cfg.DevSync.MaxDeviation = *maxDeviation
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	switch {
	case *replay != "":
		if err := runReplay(cfg, *replay, *verify); err != nil {
			log.Fatalf("replay: %v", err)
		}
	case *run:
		runDaemonWithShutdown(cfg, *quiet)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// loadConfig: явно заданный путь обязан существовать, файл по умолчанию - нет.
func loadConfig(path string) (*pkgconfig.Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && !explicit {
		c := pkgconfig.Default()
		return &c, nil
	}
	return config.Load(path)
}

func runReplay(cfg *pkgconfig.Config, path string, verify bool) error {
	maxDeviation, err := cfg.DevSync.MaxDeviationNs()
	if err != nil {
		return err
	}
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	return clocksync.Replay(in, os.Stdout, clocksync.ReplayOptions{
		HistorySize:  cfg.DevSync.HistorySize,
		MaxDeviation: maxDeviation,
		Verify:       verify,
	})
}

// runDaemonWithShutdown запускает clocksync.RunDaemon; по SIGINT/SIGTERM контекст отменяется,
// probe, HTTP сервер и Redis закрываются.
func runDaemonWithShutdown(cfg *pkgconfig.Config, quiet bool) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("получен сигнал %v, завершение...", sig)
		cancel()
	}()

	if err := clocksync.RunDaemon(ctx, cfg, quiet); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
