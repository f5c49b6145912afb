package coord

// Раскладка ключей в координационном store.
//
// Формат ключей совместим между всеми worker'ами и CLI —
// менять без миграции нельзя.
const (
	// ConfigKey — снапшот конфигурации кластера (JSON ConfigSnapshot).
	ConfigKey = "celeroot:cluster:config"

	// WorkerKeyPrefix — префикс записей worker'ов (JSON WorkerRecord).
	WorkerKeyPrefix = "celeroot:worker:"

	// ScheduleLockPrefix — префикс локов schedules (holder "host:timestamp").
	ScheduleLockPrefix = "celeroot:schedule:lock:"

	// ScheduleStatePrefix — префикс last-run состояния (RFC3339 timestamp).
	ScheduleStatePrefix = "celeroot:schedule:state:"
)

// WorkerKey возвращает ключ записи worker'а.
func WorkerKey(hostname string) string {
	return WorkerKeyPrefix + hostname
}

// ScheduleLockKey возвращает ключ лока schedule.
func ScheduleLockKey(name string) string {
	return ScheduleLockPrefix + name
}

// ScheduleStateKey возвращает ключ last-run состояния schedule.
func ScheduleStateKey(name string) string {
	return ScheduleStatePrefix + name
}
