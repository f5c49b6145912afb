package cluster

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shaiso/celeroot/internal/coord"
	"github.com/shaiso/celeroot/internal/domain"
)

// DefaultWorkerTTL — liveness TTL записи worker'а.
// Heartbeat перезаписывает запись каждый poll-интервал (30s),
// так что запас против пропущенных heartbeat'ов широкий.
const DefaultWorkerTTL = 300 * time.Second

// Registry — регистрация worker'ов в координационном store.
//
// Жизненный цикл записи worker'а:
//   - Register при старте процесса
//   - Heartbeat перезаписывает запись с обновлённым last_seen_at и TTL
//   - Deregister при graceful shutdown удаляет запись сразу
//   - при падении процесса запись истекает по TTL
//
// «Живые worker'ы» = записи, которые ещё не истекли; отдельный
// failure detector не нужен.
type Registry struct {
	store  coord.Store
	logger *slog.Logger
	ttl    time.Duration

	mu     sync.Mutex
	record *domain.WorkerRecord // запись этого процесса, nil до Register
}

// RegistryConfig — конфигурация Registry.
type RegistryConfig struct {
	Store  coord.Store
	Logger *slog.Logger
	TTL    time.Duration // liveness TTL (default: DefaultWorkerTTL)
}

// NewRegistry создаёт Registry.
func NewRegistry(cfg RegistryConfig) *Registry {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultWorkerTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		store:  cfg.Store,
		logger: logger,
		ttl:    ttl,
	}
}

// Register записывает worker'а в store с liveness TTL.
// Вызывается один раз при старте процесса.
func (r *Registry) Register(ctx context.Context, record domain.WorkerRecord) error {
	if err := r.write(ctx, &record); err != nil {
		return fmt.Errorf("register worker %q: %w", record.Hostname, err)
	}

	r.mu.Lock()
	r.record = &record
	r.mu.Unlock()

	r.logger.Info("worker registered",
		"hostname", record.Hostname,
		"role", record.Role,
		"ttl", r.ttl,
	)
	return nil
}

// Heartbeat перезаписывает запись worker'а с обновлённым last_seen_at
// и свежим TTL. Должен вызываться чаще, чем истекает TTL, иначе
// остальной флот посчитает worker'а мёртвым.
func (r *Registry) Heartbeat(ctx context.Context) error {
	r.mu.Lock()
	record := r.record
	r.mu.Unlock()

	if record == nil {
		return ErrNotRegistered
	}

	record.Touch(time.Now())
	if err := r.write(ctx, record); err != nil {
		return fmt.Errorf("heartbeat worker %q: %w", record.Hostname, err)
	}
	return nil
}

// Deregister удаляет запись worker'а из store.
// Вызывается при graceful shutdown, чтобы мёртвый worker
// не оставался целью селекторов до истечения TTL.
func (r *Registry) Deregister(ctx context.Context) error {
	r.mu.Lock()
	record := r.record
	r.record = nil
	r.mu.Unlock()

	if record == nil {
		return nil
	}

	if err := r.store.Delete(ctx, coord.WorkerKey(record.Hostname)); err != nil {
		return fmt.Errorf("deregister worker %q: %w", record.Hostname, err)
	}

	r.logger.Info("worker deregistered", "hostname", record.Hostname)
	return nil
}

// ListLive перечисляет всех живых worker'ов кластера.
// Повреждённые записи пропускаются с warning'ом — один битый worker
// не должен ломать резолвинг целей.
func (r *Registry) ListLive(ctx context.Context) ([]domain.WorkerRecord, error) {
	keys, err := r.store.Keys(ctx, coord.WorkerKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	workers := make([]domain.WorkerRecord, 0, len(keys))
	for _, key := range keys {
		value, err := r.store.Get(ctx, key)
		if err != nil {
			// Запись могла истечь между Keys и Get
			continue
		}

		var record domain.WorkerRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			r.logger.Warn("skipping malformed worker record", "key", key, "error", err)
			continue
		}
		workers = append(workers, record)
	}

	return workers, nil
}

func (r *Registry) write(ctx context.Context, record *domain.WorkerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal worker record: %w", err)
	}
	return r.store.Set(ctx, coord.WorkerKey(record.Hostname), string(data), r.ttl)
}
