// Celeroot Worker — процесс worker'а кластера celeroot.
//
// Каждый worker:
//   - регистрирует себя в координационном store и шлёт heartbeat'ы
//   - потребляет свою dispatch-очередь RabbitMQ и выполняет задачи
//   - запускает встроенный планировщик, оценивающий schedules кластера
//
// Выделенного процесса-планировщика нет: добавление worker'а
// масштабирует и исполнение, и планирование.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/celeroot/internal/cluster"
	"github.com/shaiso/celeroot/internal/config"
	"github.com/shaiso/celeroot/internal/coord"
	"github.com/shaiso/celeroot/internal/dispatch"
	"github.com/shaiso/celeroot/internal/domain"
	"github.com/shaiso/celeroot/internal/history"
	"github.com/shaiso/celeroot/internal/mq"
	"github.com/shaiso/celeroot/internal/scheduler"
	"github.com/shaiso/celeroot/internal/tasks"
	"github.com/shaiso/celeroot/internal/telemetry"
	"github.com/shaiso/celeroot/internal/worker"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting celeroot-worker")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("worker identity", "hostname", cfg.Hostname, "role", cfg.Role)

	// Координационный store
	store, err := coord.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error("failed to connect to coordination store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("coordination store connected")

	// RabbitMQ
	mqConn, err := mq.NewConnection(cfg.AMQPURL, logger)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer mqConn.Close()
	logger.Info("RabbitMQ connected")

	if err := mq.SetupTopology(ctx, mqConn); err != nil {
		logger.Error("failed to setup topology", "error", err)
		os.Exit(1)
	}

	// Журнал dispatch'ей — опционален, только при заданном DB_URL
	var recorder scheduler.DispatchRecorder
	if cfg.DBURL != "" {
		pool, err := history.NewPool(ctx)
		if err != nil {
			logger.Warn("dispatch history unavailable", "error", err)
		} else {
			defer pool.Close()
			rec := history.NewRecorder(pool)
			if err := rec.EnsureSchema(ctx); err != nil {
				logger.Warn("failed to ensure history schema", "error", err)
			} else {
				recorder = rec
				logger.Info("dispatch history enabled")
			}
		}
	}

	registry := cluster.NewRegistry(cluster.RegistryConfig{
		Store:  store,
		Logger: logger,
		TTL:    cfg.WorkerTTL,
	})

	taskRegistry := tasks.DefaultRegistry()
	publisher := mq.NewPublisher(mqConn, logger)
	dispatcher := dispatch.NewAMQPDispatcher(publisher, taskRegistry.Names(), logger)

	// Worker: потребление dispatch-очереди + heartbeat
	w := worker.New(worker.Config{
		Registry:          registry,
		Record:            domain.NewWorkerRecord(cfg.Hostname, cfg.Role, cfg.Labels),
		Tasks:             taskRegistry,
		Conn:              mqConn,
		HeartbeatInterval: cfg.PollInterval,
		Logger:            logger,
	})
	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start worker", "error", err)
		os.Exit(1)
	}

	// Встроенный планировщик
	runner := scheduler.New(scheduler.Config{
		Store:        store,
		Registry:     registry,
		Lock:         cluster.NewScheduleLock(store),
		Dispatcher:   dispatcher,
		Recorder:     recorder,
		Hostname:     cfg.Hostname,
		PollInterval: cfg.PollInterval,
		LockTTL:      cfg.LockTTL,
		Logger:       logger,
	})
	runner.Start(ctx)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Info("listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()

	runner.Stop()
	w.Stop()
	logger.Info("celeroot-worker stopped")
}
