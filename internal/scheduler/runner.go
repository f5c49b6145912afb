package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/celeroot/internal/cluster"
	"github.com/shaiso/celeroot/internal/coord"
	"github.com/shaiso/celeroot/internal/dispatch"
	"github.com/shaiso/celeroot/internal/domain"
	"github.com/shaiso/celeroot/internal/telemetry"
)

// Default configuration values.
const (
	defaultPollInterval = 30 * time.Second

	// sentinelLookback — «никогда не выполнялся» трактуется как
	// last_run = now − сутки: свежий schedule становится due на первой
	// же cron-границе, которую пересёк бы за последние сутки.
	sentinelLookback = 24 * time.Hour
)

// DispatchRecorder — необязательный журнал dispatch-попыток
// (реализация — internal/history на Postgres).
type DispatchRecorder interface {
	RecordDispatch(ctx context.Context, schedule string, sub *dispatch.Submission) error
}

// Runner — встроенный планировщик worker-процесса.
//
// Каждый worker флота запускает собственный Runner; координации между
// ними нет, кроме разделяемого store. Цикл раз в PollInterval:
//
//	конфиг → для каждого schedule: партиционирование → due-оценка →
//	lock → резолвинг целей → dispatch → persist last-run → release.
//
// Ошибка одного schedule изолирована и не мешает остальным; сам цикл
// не фатален никогда — его останавливает только shutdown процесса.
type Runner struct {
	store      coord.Store
	registry   *cluster.Registry
	lock       *cluster.ScheduleLock
	dispatcher dispatch.Dispatcher
	recorder   DispatchRecorder // nil — история не ведётся

	hostname     string
	pollInterval time.Duration
	lockTTL      time.Duration

	logger *slog.Logger

	// now подменяется в тестах.
	now func() time.Time

	// Lifecycle
	mu         sync.Mutex
	running    bool
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// Config — конфигурация Runner.
type Config struct {
	Store      coord.Store
	Registry   *cluster.Registry
	Lock       *cluster.ScheduleLock
	Dispatcher dispatch.Dispatcher
	Recorder   DispatchRecorder // опционально

	// Hostname — идентификатор этого worker'а (партиционирование, holder лока).
	Hostname string

	PollInterval time.Duration // интервал между циклами (default: 30s)
	LockTTL      time.Duration // TTL лока schedule (default: cluster.DefaultLockTTL)

	Logger *slog.Logger
}

// New создаёт Runner.
func New(cfg Config) *Runner {
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = cluster.DefaultLockTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		store:        cfg.Store,
		registry:     cfg.Registry,
		lock:         cfg.Lock,
		dispatcher:   cfg.Dispatcher,
		recorder:     cfg.Recorder,
		hostname:     cfg.Hostname,
		pollInterval: pollInterval,
		lockTTL:      lockTTL,
		logger:       logger.With("component", "scheduler"),
		now:          time.Now,
	}
}

// Start запускает фоновый цикл планировщика.
// Повторный Start работающего Runner'а — no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true

	ctx, cancel := context.WithCancel(ctx)
	r.cancelFunc = cancel

	r.logger.Info("embedded scheduler started",
		"hostname", r.hostname,
		"poll_interval", r.pollInterval,
	)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.loop(ctx)
	}()
}

// Stop останавливает цикл и дожидается завершения текущей итерации.
// Повторный Stop — no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancelFunc
	r.mu.Unlock()

	cancel()
	r.wg.Wait()

	r.logger.Info("embedded scheduler stopped", "hostname", r.hostname)
}

// loop — основной цикл: итерация сразу при старте, далее по тикеру.
func (r *Runner) loop(ctx context.Context) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		report := r.RunCycle(ctx)
		r.logCycle(report)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunCycle выполняет один цикл планировщика и возвращает отчёт.
// Никогда не паникует и не возвращает фатальных ошибок: недоступность
// store деградирует только текущий цикл, следующий повторит попытку.
func (r *Runner) RunCycle(ctx context.Context) *CycleReport {
	started := r.now()
	report := &CycleReport{StartedAt: started}
	defer func() {
		report.Duration = r.now().Sub(started)
		telemetry.SchedulerCycles.Inc()
	}()

	snapshot, err := r.fetchConfig(ctx)
	if err != nil {
		r.logger.Warn("failed to fetch cluster config, skipping cycle", "error", err)
		report.Err = err
		return report
	}
	if snapshot == nil {
		// Конфигурация ещё не опубликована — пустой цикл
		return report
	}

	for _, sched := range snapshot.Spec.Schedules {
		sr := r.evaluateSchedule(ctx, sched)
		report.Schedules = append(report.Schedules, sr)
		telemetry.ScheduleOutcomes.WithLabelValues(string(sr.Outcome)).Inc()
	}

	return report
}

// evaluateSchedule проводит один schedule через конвейер цикла.
// Любой исход терминален в пределах цикла: skip или dispatched.
func (r *Runner) evaluateSchedule(ctx context.Context, sched domain.ScheduleSpec) ScheduleReport {
	report := ScheduleReport{Schedule: sched.Name}
	logger := r.logger.With("schedule", sched.Name)

	if !sched.Enabled {
		report.Outcome = OutcomeDisabled
		return report
	}

	if !cluster.Owns(sched.Name, r.hostname) {
		report.Outcome = OutcomeNotOwned
		return report
	}

	now := r.now().UTC()
	lastRun := r.lastRun(ctx, sched.Name, now)

	due, err := IsDue(sched.Cron, lastRun, now)
	if err != nil {
		// Битое выражение — permanently-not-due, но не фатально
		logger.Error("invalid cron expression, schedule skipped", "cron", sched.Cron, "error", err)
		report.Outcome = OutcomeInvalidCron
		report.Err = err
		return report
	}
	if !due {
		report.Outcome = OutcomeNotDue
		return report
	}

	acquired, err := r.lock.TryAcquire(ctx, sched.Name, cluster.Holder(r.hostname, now), r.lockTTL)
	if err != nil {
		logger.Warn("lock attempt failed", "error", err)
		report.Outcome = OutcomeFailed
		report.Err = err
		return report
	}
	if !acquired {
		logger.Debug("lock held by another worker, skipping")
		report.Outcome = OutcomeLockBusy
		return report
	}

	// Лок снимается всегда, даже при ошибке dispatch'а или shutdown'е.
	// Отдельный контекст: release должен пройти и после отмены ctx.
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.lock.Release(releaseCtx, sched.Name); err != nil {
			logger.Warn("failed to release schedule lock", "error", err)
		}
	}()

	workers, err := r.registry.ListLive(ctx)
	if err != nil {
		logger.Warn("failed to list live workers", "error", err)
		report.Outcome = OutcomeFailed
		report.Err = err
		return report
	}
	telemetry.LiveWorkers.Set(float64(len(workers)))

	targets := domain.MatchTargets(workers, sched.Targets)
	if len(targets) == 0 {
		logger.Warn("no live workers match schedule targets", "live_workers", len(workers))
		report.Outcome = OutcomeNoTargets
		return report
	}
	report.Targets = len(targets)

	// Dispatch каждой цели; ошибка одной цели не мешает остальным
	for _, target := range targets {
		sub, err := r.dispatcher.Submit(ctx, sched.Name, sched.Task, target, sched.Params)
		if err != nil {
			if errors.Is(err, dispatch.ErrUnknownTask) {
				logger.Warn("unknown task name, submission skipped", "task", sched.Task)
			} else {
				logger.Error("failed to submit task", "task", sched.Task, "target", target.Hostname, "error", err)
			}
			continue
		}

		report.Submitted++
		telemetry.Dispatches.WithLabelValues(sched.Task).Inc()
		logger.Info("task dispatched",
			"task", sched.Task,
			"target", target.Hostname,
			"submission_id", sub.ID,
		)

		if r.recorder != nil {
			if err := r.recorder.RecordDispatch(ctx, sched.Name, sub); err != nil {
				logger.Warn("failed to record dispatch history", "error", err)
			}
		}
	}

	// last-run продвигается строго после попытки dispatch'а: семантика
	// at-most-once-attempt, подтверждение выполнения не ожидается
	if err := r.persistLastRun(ctx, sched.Name, now); err != nil {
		logger.Error("failed to persist last-run state", "error", err)
		report.Err = err
	}

	report.Outcome = OutcomeDispatched
	return report
}

// fetchConfig читает снапшот конфигурации из store.
// Отсутствие ключа — не ошибка: кластер ещё не сконфигурирован.
func (r *Runner) fetchConfig(ctx context.Context) (*domain.ConfigSnapshot, error) {
	value, err := r.store.Get(ctx, coord.ConfigKey)
	if err != nil {
		if errors.Is(err, coord.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cluster config: %w", err)
	}

	var snapshot domain.ConfigSnapshot
	if err := json.Unmarshal([]byte(value), &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal cluster config: %w", err)
	}
	return &snapshot, nil
}

// lastRun возвращает last-run schedule либо sentinel (now − сутки),
// если состояния нет или оно нечитаемо.
func (r *Runner) lastRun(ctx context.Context, name string, now time.Time) time.Time {
	sentinel := now.Add(-sentinelLookback)

	value, err := r.store.Get(ctx, coord.ScheduleStateKey(name))
	if err != nil {
		if !errors.Is(err, coord.ErrNotFound) {
			r.logger.Warn("failed to read last-run state", "schedule", name, "error", err)
		}
		return sentinel
	}

	lastRun, err := time.Parse(time.RFC3339, value)
	if err != nil {
		r.logger.Warn("malformed last-run state, using sentinel", "schedule", name, "value", value)
		return sentinel
	}
	return lastRun
}

// persistLastRun записывает last-run schedule (RFC3339, без TTL).
func (r *Runner) persistLastRun(ctx context.Context, name string, runAt time.Time) error {
	return r.store.Set(ctx, coord.ScheduleStateKey(name), runAt.UTC().Format(time.RFC3339), 0)
}

// logCycle пишет итоговую строку цикла.
func (r *Runner) logCycle(report *CycleReport) {
	if report.Err != nil {
		return
	}
	if len(report.Schedules) == 0 {
		r.logger.Debug("scheduler cycle completed, no schedules")
		return
	}

	skipped := 0
	for _, s := range report.Schedules {
		if s.Outcome.IsSkip() {
			skipped++
		}
	}

	r.logger.Info("scheduler cycle completed",
		"schedules", len(report.Schedules),
		"dispatched", report.Count(OutcomeDispatched),
		"skipped", skipped,
		"lock_busy", report.Count(OutcomeLockBusy),
		"failed", report.Count(OutcomeFailed),
		"duration", report.Duration,
	)
}
