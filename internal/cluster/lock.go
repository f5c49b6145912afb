package cluster

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/celeroot/internal/coord"
)

// DefaultLockTTL — TTL лока schedule по умолчанию.
// Должен с запасом покрывать worst-case латентность dispatch'а:
// при падении держателя лок живёт ещё до TTL, это верхняя граница
// окна возможного дублирования.
const DefaultLockTTL = 300 * time.Second

// ScheduleLock — распределённый лок на выполнение одного schedule.
//
// Захват — атомарный set-if-absent с TTL в координационном store:
// во всём флоте лок с данным именем держит не более одного worker'а.
// Это единственный строгий механизм взаимного исключения; проигрыш
// захвата — штатный исход, не ошибка.
type ScheduleLock struct {
	store coord.Store
}

// NewScheduleLock создаёт лок поверх store.
func NewScheduleLock(store coord.Store) *ScheduleLock {
	return &ScheduleLock{store: store}
}

// Holder формирует идентификатор держателя лока: "hostname:timestamp".
func Holder(hostname string, now time.Time) string {
	return hostname + ":" + now.UTC().Format(time.RFC3339)
}

// TryAcquire пытается захватить лок schedule.
// Возвращает false без ошибки, если лок держит кто-то другой.
func (l *ScheduleLock) TryAcquire(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	ok, err := l.store.SetNX(ctx, coord.ScheduleLockKey(name), holder, ttl)
	if err != nil {
		return false, fmt.Errorf("acquire schedule lock %q: %w", name, err)
	}
	return ok, nil
}

// Release снимает лок schedule (best-effort удаление).
// Если держатель упал, не успев снять лок, тот истечёт сам по TTL.
func (l *ScheduleLock) Release(ctx context.Context, name string) error {
	if err := l.store.Delete(ctx, coord.ScheduleLockKey(name)); err != nil {
		return fmt.Errorf("release schedule lock %q: %w", name, err)
	}
	return nil
}
