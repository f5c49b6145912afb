package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/celeroot/internal/cluster"
	"github.com/shaiso/celeroot/internal/domain"
	"github.com/shaiso/celeroot/internal/mq"
	"github.com/shaiso/celeroot/internal/tasks"
	"github.com/shaiso/celeroot/internal/telemetry"
)

// Default configuration values. Heartbeat по умолчанию совпадает с
// циклом планировщика: запись worker'а продлевается минимум раз за
// poll interval.
const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultTaskTimeout       = 10 * time.Minute
	defaultPrefetch          = 5
)

// Worker — исполнительная часть процесса celeroot.
//
// Worker:
//   - регистрирует себя в кластерном Registry и шлёт heartbeat'ы
//   - потребляет свою dispatch-очередь RabbitMQ (routing key = hostname)
//   - выполняет задачи из tasks.Registry локально на своём хосте
//
// Планировщик (internal/scheduler) живёт в том же процессе, но
// управляется отдельно — worker не знает о существовании schedules.
type Worker struct {
	registry *cluster.Registry
	record   domain.WorkerRecord
	tasks    *tasks.Registry

	conn     *mq.Connection
	consumer *mq.Consumer

	heartbeatInterval time.Duration
	taskTimeout       time.Duration

	logger *slog.Logger

	// Lifecycle
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Worker.
type Config struct {
	// Registry — кластерная регистрация worker'ов.
	Registry *cluster.Registry

	// Record — запись этого worker'а (hostname, role, labels).
	Record domain.WorkerRecord

	// Tasks — реестр задач (опционально; если nil — DefaultRegistry()).
	Tasks *tasks.Registry

	// Conn — соединение с RabbitMQ.
	Conn *mq.Connection

	HeartbeatInterval time.Duration // интервал heartbeat (default: 30s)
	TaskTimeout       time.Duration // таймаут одной задачи (default: 10m)

	Logger *slog.Logger
}

// New создаёт новый Worker.
func New(cfg Config) *Worker {
	heartbeatInterval := cfg.HeartbeatInterval
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}

	taskTimeout := cfg.TaskTimeout
	if taskTimeout <= 0 {
		taskTimeout = defaultTaskTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := cfg.Tasks
	if registry == nil {
		registry = tasks.DefaultRegistry()
	}

	return &Worker{
		registry:          cfg.Registry,
		record:            cfg.Record,
		tasks:             registry,
		conn:              cfg.Conn,
		heartbeatInterval: heartbeatInterval,
		taskTimeout:       taskTimeout,
		logger:            logger.With("component", "worker"),
	}
}

// Start запускает Worker.
//
// Регистрирует worker'а в кластере, объявляет его dispatch-очередь и
// запускает consumer и heartbeat-цикл.
func (w *Worker) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel

	w.logger.Info("starting worker",
		"hostname", w.record.Hostname,
		"role", w.record.Role,
		"tasks", w.tasks.Count(),
	)

	// Регистрация best-effort: недоступный store не валит worker'а,
	// heartbeat-цикл допишет запись когда store вернётся
	if err := w.registry.Register(ctx, w.record); err != nil {
		w.logger.Warn("initial registration failed, will retry via heartbeat", "error", err)
	}

	if err := mq.DeclareWorkerQueue(ctx, w.conn, w.record.Hostname); err != nil {
		cancel()
		return err
	}

	w.consumer = mq.NewConsumer(w.conn, w.logger, mq.ConsumerConfig{
		Queue:    string(mq.WorkerQueue(w.record.Hostname)),
		Handler:  w.handleTaskDispatch,
		Prefetch: defaultPrefetch,
	})

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("dispatch consumer error", "error", err)
		}
	}()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.heartbeatLoop(ctx)
	}()

	w.logger.Info("worker started", "queue", mq.WorkerQueue(w.record.Hostname))
	return nil
}

// Stop останавливает Worker и снимает его регистрацию в кластере.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker...")

	if w.cancelFunc != nil {
		w.cancelFunc()
	}

	if w.consumer != nil {
		w.consumer.Stop()
	}

	w.wg.Wait()

	// Снимаем запись сразу, не дожидаясь истечения TTL: иначе
	// планировщики других worker'ов будут диспатчить в пустую очередь
	deregCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.registry.Deregister(deregCtx); err != nil {
		w.logger.Warn("failed to deregister worker", "error", err)
	}

	w.logger.Info("worker stopped")
}

// heartbeatLoop периодически продлевает liveness-запись worker'а.
func (w *Worker) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(w.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.heartbeat(ctx)
		}
	}
}

// heartbeat продлевает запись; если Register при старте не удался,
// повторяет регистрацию.
func (w *Worker) heartbeat(ctx context.Context) {
	err := w.registry.Heartbeat(ctx)
	if errors.Is(err, cluster.ErrNotRegistered) {
		err = w.registry.Register(ctx, w.record)
	}
	if err != nil {
		w.logger.Warn("heartbeat failed", "error", err)
		return
	}
	telemetry.Heartbeats.Inc()
}
