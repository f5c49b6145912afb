package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/celeroot/internal/cluster"
	"github.com/shaiso/celeroot/internal/coord"
	"github.com/shaiso/celeroot/internal/dispatch"
	"github.com/shaiso/celeroot/internal/domain"
)

// fakeDispatcher собирает submissions в памяти.
type fakeDispatcher struct {
	mu        sync.Mutex
	subs      []*dispatch.Submission
	schedules []string // имя schedule каждого Submit
	fail      error    // если задан, Submit возвращает эту ошибку
}

func (d *fakeDispatcher) Submit(_ context.Context, schedule, task string, target domain.WorkerRecord, _ map[string]any) (*dispatch.Submission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fail != nil {
		return nil, d.fail
	}

	sub := &dispatch.Submission{
		ID:          uuid.New(),
		Task:        task,
		Target:      target.Hostname,
		SubmittedAt: time.Now().UTC(),
	}
	d.subs = append(d.subs, sub)
	d.schedules = append(d.schedules, schedule)
	return sub, nil
}

func (d *fakeDispatcher) submissions() []*dispatch.Submission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*dispatch.Submission(nil), d.subs...)
}

// fakeRecorder собирает записи истории dispatch'ей.
type fakeRecorder struct {
	mu      sync.Mutex
	records []string // schedule names
}

func (r *fakeRecorder) RecordDispatch(_ context.Context, schedule string, _ *dispatch.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, schedule)
	return nil
}

// owningHost подбирает hostname, чей bucket совпадает с bucket'ом
// schedule — такой worker владеет им при партиционировании.
func owningHost(t *testing.T, schedule, base string) string {
	t.Helper()
	for i := 0; i < 1000; i++ {
		host := fmt.Sprintf("%s-%d", base, i)
		if cluster.Owns(schedule, host) {
			return host
		}
	}
	t.Fatal("no owning hostname found in 1000 candidates")
	return ""
}

func seedConfig(t *testing.T, store coord.Store, schedules ...domain.ScheduleSpec) {
	t.Helper()
	snapshot := domain.ConfigSnapshot{
		Name: "test-cluster",
		Spec: domain.SnapshotSpec{Schedules: schedules},
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := store.Set(context.Background(), coord.ConfigKey, string(data), 0); err != nil {
		t.Fatalf("seed config: %v", err)
	}
}

func registerWorker(t *testing.T, store coord.Store, hostname, role string, labels map[string]string) {
	t.Helper()
	reg := cluster.NewRegistry(cluster.RegistryConfig{Store: store})
	if err := reg.Register(context.Background(), domain.NewWorkerRecord(hostname, role, labels)); err != nil {
		t.Fatalf("register %s: %v", hostname, err)
	}
}

func newTestRunner(store coord.Store, dispatcher dispatch.Dispatcher, recorder DispatchRecorder, hostname string, now time.Time) *Runner {
	runner := New(Config{
		Store:      store,
		Registry:   cluster.NewRegistry(cluster.RegistryConfig{Store: store}),
		Lock:       cluster.NewScheduleLock(store),
		Dispatcher: dispatcher,
		Recorder:   recorder,
		Hostname:   hostname,
	})
	runner.now = func() time.Time { return now }
	return runner
}

func secCheckSpec() domain.ScheduleSpec {
	return domain.ScheduleSpec{
		Name:    "sec-check",
		Cron:    "0 2 * * *",
		Task:    "check-security-updates",
		Targets: []domain.Target{{Selector: domain.Selector{Role: "database"}}},
		Enabled: true,
	}
}

// Сценарий: due schedule с role-селектором диспатчится ровно на
// worker'а с этой ролью, last-run записывается.
func TestRunner_DispatchToMatchingRole(t *testing.T) {
	store := coord.NewMemoryStore()
	ctx := context.Background()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())
	registerWorker(t, store, "db01", "database", nil)
	registerWorker(t, store, "web01", "webserver", nil)

	dispatcher := &fakeDispatcher{}
	recorder := &fakeRecorder{}
	runner := newTestRunner(store, dispatcher, recorder, owningHost(t, "sec-check", "sched"), now)

	report := runner.RunCycle(ctx)

	sr := report.Find("sec-check")
	if sr == nil {
		t.Fatal("sec-check missing from cycle report")
	}
	if sr.Outcome != OutcomeDispatched {
		t.Fatalf("expected dispatched, got %s (err=%v)", sr.Outcome, sr.Err)
	}
	if sr.Targets != 1 || sr.Submitted != 1 {
		t.Errorf("expected 1 target and 1 submission, got %d/%d", sr.Targets, sr.Submitted)
	}

	subs := dispatcher.submissions()
	if len(subs) != 1 {
		t.Fatalf("expected exactly 1 submission, got %d", len(subs))
	}
	if subs[0].Target != "db01" || subs[0].Task != "check-security-updates" {
		t.Errorf("unexpected submission: %+v", subs[0])
	}
	if dispatcher.schedules[0] != "sec-check" {
		t.Errorf("schedule name must reach the dispatcher, got %q", dispatcher.schedules[0])
	}

	// last-run записан как RFC3339 now
	value, err := store.Get(ctx, coord.ScheduleStateKey("sec-check"))
	if err != nil {
		t.Fatalf("last-run state missing: %v", err)
	}
	if value != now.Format(time.RFC3339) {
		t.Errorf("expected last-run %s, got %s", now.Format(time.RFC3339), value)
	}

	// История dispatch'а записана
	if len(recorder.records) != 1 || recorder.records[0] != "sec-check" {
		t.Errorf("unexpected history records: %v", recorder.records)
	}

	// Лок снят после цикла
	if _, err := store.Get(ctx, coord.ScheduleLockKey("sec-check")); err == nil {
		t.Error("schedule lock should be released after the cycle")
	}
}

// Сценарий: повторная оценка секундой позже с уже записанным last-run
// — не due, dispatch не повторяется.
func TestRunner_SecondEvaluationNotDue(t *testing.T) {
	store := coord.NewMemoryStore()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())
	registerWorker(t, store, "db01", "database", nil)

	dispatcher := &fakeDispatcher{}
	hostname := owningHost(t, "sec-check", "sched")

	runner := newTestRunner(store, dispatcher, nil, hostname, now)
	if sr := runner.RunCycle(context.Background()).Find("sec-check"); sr.Outcome != OutcomeDispatched {
		t.Fatalf("first cycle should dispatch, got %s", sr.Outcome)
	}

	later := newTestRunner(store, dispatcher, nil, hostname, now.Add(time.Second))
	sr := later.RunCycle(context.Background()).Find("sec-check")
	if sr.Outcome != OutcomeNotDue {
		t.Fatalf("second evaluation should be not_due, got %s", sr.Outcome)
	}
	if len(dispatcher.submissions()) != 1 {
		t.Errorf("no further dispatch expected, got %d submissions", len(dispatcher.submissions()))
	}
}

// Сценарий: два владельца одного schedule доходят до захвата лока —
// диспатчит ровно один, второй получает lock_busy.
func TestRunner_LockLoserSkips(t *testing.T) {
	store := coord.NewMemoryStore()
	ctx := context.Background()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())
	registerWorker(t, store, "db01", "database", nil)

	hostA := owningHost(t, "sec-check", "worker-a")
	hostB := owningHost(t, "sec-check", "worker-b")

	// Worker A уже держит лок (дошёл до захвата первым)
	lock := cluster.NewScheduleLock(store)
	ok, err := lock.TryAcquire(ctx, "sec-check", cluster.Holder(hostA, now), time.Minute)
	if err != nil || !ok {
		t.Fatalf("pre-acquire failed: ok=%v err=%v", ok, err)
	}

	dispatcherB := &fakeDispatcher{}
	runnerB := newTestRunner(store, dispatcherB, nil, hostB, now)

	sr := runnerB.RunCycle(ctx).Find("sec-check")
	if sr.Outcome != OutcomeLockBusy {
		t.Fatalf("loser should see lock_busy, got %s", sr.Outcome)
	}
	if len(dispatcherB.submissions()) != 0 {
		t.Error("loser must not dispatch")
	}

	// last-run не продвинут проигравшим
	if _, err := store.Get(ctx, coord.ScheduleStateKey("sec-check")); err == nil {
		t.Error("loser must not persist last-run state")
	}

	// Победитель завершает свой цикл после освобождения лока
	if err := lock.Release(ctx, "sec-check"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	dispatcherA := &fakeDispatcher{}
	runnerA := newTestRunner(store, dispatcherA, nil, hostA, now)
	if sr := runnerA.RunCycle(ctx).Find("sec-check"); sr.Outcome != OutcomeDispatched {
		t.Fatalf("winner should dispatch, got %s", sr.Outcome)
	}
	if len(dispatcherA.submissions()) != 1 {
		t.Errorf("expected exactly 1 dispatch total, got %d", len(dispatcherA.submissions()))
	}
}

// Битое cron-выражение изолировано: остальные schedules цикла
// оцениваются и диспатчатся.
func TestRunner_InvalidCronDoesNotBlockOthers(t *testing.T) {
	store := coord.NewMemoryStore()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	broken := domain.ScheduleSpec{
		Name:    "broken",
		Cron:    "not a cron",
		Task:    "check-security-updates",
		Targets: []domain.Target{{Selector: domain.Selector{}}},
		Enabled: true,
	}
	seedConfig(t, store, broken, secCheckSpec())
	registerWorker(t, store, "db01", "database", nil)

	dispatcher := &fakeDispatcher{}
	// Владеет обоими schedules — подбираем host из общего bucket'а
	var hostname string
	for i := 0; i < 10000; i++ {
		h := fmt.Sprintf("host-%d", i)
		if cluster.Owns("broken", h) && cluster.Owns("sec-check", h) {
			hostname = h
			break
		}
	}
	if hostname == "" {
		// Bucket'ы различаются — достаточно проверить изоляцию на broken
		hostname = owningHost(t, "broken", "host")
	}

	runner := newTestRunner(store, dispatcher, nil, hostname, now)
	report := runner.RunCycle(context.Background())

	if sr := report.Find("broken"); sr.Outcome != OutcomeInvalidCron {
		t.Errorf("expected invalid_cron, got %s", sr.Outcome)
	}
	if sr := report.Find("sec-check"); sr.Outcome == OutcomeFailed {
		t.Errorf("sec-check must not be affected by the broken schedule: %v", sr.Err)
	}
}

func TestRunner_DisabledSkipped(t *testing.T) {
	store := coord.NewMemoryStore()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	spec := secCheckSpec()
	spec.Enabled = false
	seedConfig(t, store, spec)

	runner := newTestRunner(store, &fakeDispatcher{}, nil, owningHost(t, "sec-check", "sched"), now)
	if sr := runner.RunCycle(context.Background()).Find("sec-check"); sr.Outcome != OutcomeDisabled {
		t.Errorf("expected disabled, got %s", sr.Outcome)
	}
}

func TestRunner_NotOwnedSkipped(t *testing.T) {
	store := coord.NewMemoryStore()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())

	// Подбираем hostname из другого bucket'а
	var hostname string
	for i := 0; i < 1000; i++ {
		h := fmt.Sprintf("other-%d", i)
		if !cluster.Owns("sec-check", h) {
			hostname = h
			break
		}
	}

	dispatcher := &fakeDispatcher{}
	runner := newTestRunner(store, dispatcher, nil, hostname, now)
	if sr := runner.RunCycle(context.Background()).Find("sec-check"); sr.Outcome != OutcomeNotOwned {
		t.Errorf("expected not_owned, got %s", sr.Outcome)
	}
	if len(dispatcher.submissions()) != 0 {
		t.Error("non-owner must not dispatch")
	}
}

// Нет живых worker'ов под селектор: dispatch не предпринимается,
// last-run не продвигается — следующая попытка в следующем цикле.
func TestRunner_NoTargets(t *testing.T) {
	store := coord.NewMemoryStore()
	ctx := context.Background()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())
	registerWorker(t, store, "web01", "webserver", nil) // роль не совпадает

	runner := newTestRunner(store, &fakeDispatcher{}, nil, owningHost(t, "sec-check", "sched"), now)
	sr := runner.RunCycle(ctx).Find("sec-check")

	if sr.Outcome != OutcomeNoTargets {
		t.Fatalf("expected no_targets, got %s", sr.Outcome)
	}
	if _, err := store.Get(ctx, coord.ScheduleStateKey("sec-check")); err == nil {
		t.Error("last-run must not advance when no dispatch was attempted")
	}
	if _, err := store.Get(ctx, coord.ScheduleLockKey("sec-check")); err == nil {
		t.Error("lock must be released")
	}
}

// Неизвестная задача: submission не уходит, но попытка состоялась —
// last-run продвигается, цикл жив.
func TestRunner_UnknownTaskSkipped(t *testing.T) {
	store := coord.NewMemoryStore()
	ctx := context.Background()
	now := mustTime(t, "2025-06-01T02:00:01Z")

	seedConfig(t, store, secCheckSpec())
	registerWorker(t, store, "db01", "database", nil)

	dispatcher := &fakeDispatcher{fail: dispatch.ErrUnknownTask}
	runner := newTestRunner(store, dispatcher, nil, owningHost(t, "sec-check", "sched"), now)

	sr := runner.RunCycle(ctx).Find("sec-check")
	if sr.Outcome != OutcomeDispatched {
		t.Fatalf("expected dispatched (attempted), got %s", sr.Outcome)
	}
	if sr.Submitted != 0 {
		t.Errorf("expected 0 successful submissions, got %d", sr.Submitted)
	}
	if _, err := store.Get(ctx, coord.ScheduleStateKey("sec-check")); err != nil {
		t.Error("last-run must advance after an attempted dispatch")
	}
}

func TestRunner_NoConfigEmptyCycle(t *testing.T) {
	store := coord.NewMemoryStore()
	runner := newTestRunner(store, &fakeDispatcher{}, nil, "any-host", time.Now())

	report := runner.RunCycle(context.Background())
	if report.Err != nil {
		t.Errorf("missing config must not be an error: %v", report.Err)
	}
	if len(report.Schedules) != 0 {
		t.Errorf("expected empty cycle, got %d schedules", len(report.Schedules))
	}
}

func TestRunner_StartStopIdempotent(t *testing.T) {
	store := coord.NewMemoryStore()
	runner := New(Config{
		Store:        store,
		Registry:     cluster.NewRegistry(cluster.RegistryConfig{Store: store}),
		Lock:         cluster.NewScheduleLock(store),
		Dispatcher:   &fakeDispatcher{},
		Hostname:     "host",
		PollInterval: time.Hour, // чтобы цикл не крутился в тесте
	})

	ctx := context.Background()
	runner.Start(ctx)
	runner.Start(ctx) // no-op
	runner.Stop()
	runner.Stop() // no-op
}
