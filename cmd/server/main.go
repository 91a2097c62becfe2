package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/annel0/voxel-world/internal/api"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/eventbus"
	"github.com/annel0/voxel-world/internal/game"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/observability"
	"github.com/annel0/voxel-world/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию VOXEL_CONFIG)")
	maxTicks := flag.Uint64("ticks", 0, "остановиться после N тиков (0: работать до сигнала)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.GetLoggerManager().CloseAll()

	logger := logging.GetServerLogger()
	logger.Info("🎮 Запуск Voxel World Engine...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *maxTicks, logger); err != nil {
		logger.Error("❌ %v", err)
		os.Exit(1)
	}
	logger.Info("👋 Сервер успешно остановлен")
}

func setupLogging(cfg config.LoggingConfig) error {
	consoleLevel, err := logging.ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		return err
	}
	fileLevel, err := logging.ParseLevel(cfg.FileLevel)
	if err != nil {
		return err
	}
	logging.GetLoggerManager().Configure(cfg.Dir, consoleLevel, fileLevel)
	return nil
}

func openStore(ctx context.Context, cfg config.StorageConfig) (storage.BlobStore, error) {
	return storage.Open(ctx, storage.Config{
		Backend:       cfg.Backend,
		Path:          cfg.Path,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   cfg.RedisPrefix,
		MySQLDSN:      cfg.MySQLDSN,
	})
}

func run(ctx context.Context, cfg *config.Config, maxTicks uint64, logger *logging.Logger) error {
	// === ТРАССИРОВКА ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, observability.Config{
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
		ServiceName: cfg.Telemetry.ServiceName,
		SampleRatio: cfg.Telemetry.SampleRatio,
	}, logger)
	if err != nil {
		return fmt.Errorf("телеметрия: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	// === ХРАНИЛИЩЕ ===
	storageLogger := logging.GetStorageLogger()
	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("хранилище %s: %w", cfg.Storage.Backend, err)
	}
	storageLogger.Info("Хранилище сохранений: %s", cfg.Storage.Backend)

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sampler, err := metrics.NewProcessSampler(m, logger)
	if err != nil {
		logger.Warn("Сэмплер процесса отключён: %v", err)
		sampler = nil
	}

	// === ШИНА СОБЫТИЙ ===
	eventsLogger := logging.GetComponentLogger("events")
	bus, err := eventbus.Open(cfg.Events.Backend, cfg.Events.Capacity, eventbus.JetStreamConfig{
		URL:       cfg.Events.NATSURL,
		Stream:    cfg.Events.Stream,
		Retention: cfg.Events.Retention,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("шина событий %s: %w", cfg.Events.Backend, err)
	}
	if bus != nil {
		defer func() {
			if err := bus.Close(); err != nil {
				eventsLogger.Error("Ошибка закрытия шины событий: %v", err)
			}
		}()
		if err := eventbus.RegisterMetrics(bus, reg); err != nil {
			eventsLogger.Warn("Метрики шины не зарегистрированы: %v", err)
		}
		if _, err := eventbus.StartLoggingListener(bus, eventsLogger); err != nil {
			eventsLogger.Warn("Логирование событий отключено: %v", err)
		}
	}

	// === ДВИЖОК ===
	engine, err := game.New(game.Options{
		Config:  cfg,
		Store:   store,
		Metrics: m,
		Bus:     bus,
		Logger:  logging.GetWorldLogger(),
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("создание движка: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			storageLogger.Error("Ошибка закрытия хранилища: %v", err)
		}
	}()

	if _, err := engine.LoadLatest(ctx); err != nil {
		// Повреждённое сохранение не мешает старту: мир строится из сида
		logger.Warn("⚠️ Последнее сохранение пропущено: %v", err)
	}

	// === АДМИНСКИЙ API ===
	addr := fmt.Sprintf(":%d", cfg.Server.GetHTTPPort())
	server := api.NewRestServer(api.Config{
		Addr:     addr,
		GinMode:  cfg.Server.GinMode,
		Engine:   engine,
		Registry: reg,
		Sampler:  sampler,
		Logger:   logging.GetComponentLogger("api"),
	})
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	if sampler != nil {
		go sampler.Run(ctx, 5*time.Second)
	}

	logger.Info("✅ Все сервисы запущены")
	logger.Info("   ❤️  Health check: http://localhost%s/health", addr)
	logger.Info("   📈 Метрики: http://localhost%s/metrics", addr)

	// === ЦИКЛ ТИКОВ ===
	viewer := newScriptedViewer(engine, engine.Viewer())
	loopErr := tickLoop(ctx, engine, viewer, cfg.Server.TickInterval(), maxTicks, serverErr, logger)

	// === GRACEFUL SHUTDOWN ===
	logger.Debug("Остановка сервисов...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("❌ Ошибка остановки API: %v", err)
	}

	if key, err := engine.Save(shutdownCtx); err != nil {
		logger.Error("❌ Сохранение при выходе не удалось: %v", err)
	} else {
		logger.Info("💾 Сохранено при выходе: %s", key)
	}
	return loopErr
}

func tickLoop(ctx context.Context, engine *game.Engine, viewer *scriptedViewer, interval time.Duration,
	maxTicks uint64, serverErr <-chan error, logger *logging.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			logger.Info("📡 Получен сигнал завершения")
			return nil
		case err := <-serverErr:
			if err != nil {
				return fmt.Errorf("админский API: %w", err)
			}
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			report := engine.Tick(ctx, viewer.Next(dt))
			if report.Destruction.Broken {
				logger.Debug("Разрушен блок %s в %v", report.Destruction.BrokenType, report.Destruction.BrokenAt)
			}
			if report.SaveErr != nil {
				logger.Warn("Быстрое сохранение не удалось: %v", report.SaveErr)
			}
			if maxTicks > 0 && report.Tick >= maxTicks {
				logger.Info("Достигнут лимит тиков: %d", maxTicks)
				return nil
			}
		}
	}
}
