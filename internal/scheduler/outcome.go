package scheduler

import "time"

// Outcome — исход оценки одного schedule в одном цикле.
//
// Терминальный исход всегда один из двух классов: skip (все варианты
// кроме dispatched) или dispatched. Типизированные исходы позволяют
// тестам и метрикам опираться на отчёт цикла, а не на строки логов.
type Outcome string

// Исходы оценки schedule.
const (
	// OutcomeDisabled — schedule выключен в конфигурации.
	OutcomeDisabled Outcome = "disabled"

	// OutcomeNotOwned — этот worker не владеет schedule (партиционирование).
	OutcomeNotOwned Outcome = "not_owned"

	// OutcomeNotDue — cron-граница ещё не наступила.
	OutcomeNotDue Outcome = "not_due"

	// OutcomeInvalidCron — cron-выражение не парсится; schedule
	// трактуется как permanently-not-due.
	OutcomeInvalidCron Outcome = "invalid_cron"

	// OutcomeLockBusy — лок держит другой worker. Штатный skip, не ошибка.
	OutcomeLockBusy Outcome = "lock_busy"

	// OutcomeNoTargets — ни один живой worker не совпал с селекторами.
	// Dispatch не состоялся, last-run не продвигается.
	OutcomeNoTargets Outcome = "no_targets"

	// OutcomeDispatched — dispatch был предпринят (включая случаи,
	// когда часть отправок завершилась ошибкой); last-run продвинут.
	OutcomeDispatched Outcome = "dispatched"

	// OutcomeFailed — оценка прервана ошибкой store; schedule будет
	// переоценён в следующем цикле.
	OutcomeFailed Outcome = "failed"
)

// IsSkip возвращает true для всех исходов, при которых dispatch
// не был предпринят.
func (o Outcome) IsSkip() bool {
	return o != OutcomeDispatched
}

// ScheduleReport — результат оценки одного schedule.
type ScheduleReport struct {
	// Schedule — имя schedule.
	Schedule string

	// Outcome — исход оценки.
	Outcome Outcome

	// Targets — число worker'ов, совпавших с селекторами
	// (заполняется при dispatched).
	Targets int

	// Submitted — число успешно отправленных submissions.
	Submitted int

	// Err — ошибка шага, приведшего к skip/failed (если была).
	Err error
}

// CycleReport — агрегированный результат одного цикла планировщика.
type CycleReport struct {
	// StartedAt — момент начала цикла.
	StartedAt time.Time

	// Duration — длительность цикла.
	Duration time.Duration

	// Err — ошибка уровня цикла (недоступность конфигурации).
	// Per-schedule ошибки живут в Schedules[i].Err.
	Err error

	// Schedules — отчёты по каждому schedule снапшота.
	Schedules []ScheduleReport
}

// Count возвращает число schedules с данным исходом.
func (r *CycleReport) Count(outcome Outcome) int {
	n := 0
	for _, s := range r.Schedules {
		if s.Outcome == outcome {
			n++
		}
	}
	return n
}

// Find возвращает отчёт по имени schedule, nil если его нет в цикле.
func (r *CycleReport) Find(schedule string) *ScheduleReport {
	for i := range r.Schedules {
		if r.Schedules[i].Schedule == schedule {
			return &r.Schedules[i]
		}
	}
	return nil
}
