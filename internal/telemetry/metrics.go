package telemetry

import "github.com/prometheus/client_golang/prometheus"

// Метрики планировщика и worker'а.
// Экспортируются через /metrics (promhttp) в cmd/celeroot-worker.
var (
	// SchedulerCycles — счётчик циклов планировщика.
	SchedulerCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "celeroot_scheduler_cycles_total",
		Help: "Total scheduler poll cycles executed.",
	})

	// ScheduleOutcomes — исходы оценки schedules по типам.
	ScheduleOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celeroot_schedule_outcomes_total",
		Help: "Schedule evaluation outcomes per cycle.",
	}, []string{"outcome"})

	// Dispatches — успешно отправленные submissions по задачам.
	Dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celeroot_dispatches_total",
		Help: "Task submissions dispatched to workers.",
	}, []string{"task"})

	// Heartbeats — отправленные heartbeat'ы этого worker'а.
	Heartbeats = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "celeroot_heartbeats_total",
		Help: "Worker registry heartbeats sent.",
	})

	// TaskExecutions — выполненные этим worker'ом задачи по статусам.
	TaskExecutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "celeroot_task_executions_total",
		Help: "Tasks executed by this worker.",
	}, []string{"task", "status"})

	// LiveWorkers — число живых worker'ов, видимых в последнем цикле.
	LiveWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "celeroot_live_workers",
		Help: "Live workers observed during the last scheduler cycle.",
	})
)

func init() {
	prometheus.MustRegister(
		SchedulerCycles,
		ScheduleOutcomes,
		Dispatches,
		Heartbeats,
		TaskExecutions,
		LiveWorkers,
	)
}
