package domain

import "time"

// WorkerStatus — статус worker'а в кластере.
type WorkerStatus string

// Статусы worker'ов.
const (
	WorkerStatusActive   WorkerStatus = "active"
	WorkerStatusDraining WorkerStatus = "draining"
)

// WorkerRecord — регистрация worker-процесса в кластере.
//
// Запись создаётся при старте процесса, периодически перезаписывается
// heartbeat'ом (с обновлённым LastSeenAt и TTL) и удаляется при graceful
// shutdown. При падении процесса запись истекает по TTL — «живые worker'ы»
// это записи, которые ещё не истекли, явный failure detector не нужен.
type WorkerRecord struct {
	// Hostname — уникальный идентификатор worker'а.
	Hostname string `json:"hostname"`

	// Role — роль worker'а (webserver, database, ...).
	Role string `json:"role"`

	// Labels — произвольные метки для селекторов.
	Labels map[string]string `json:"labels,omitempty"`

	// StartedAt — время старта процесса.
	StartedAt time.Time `json:"started_at"`

	// LastSeenAt — время последнего heartbeat.
	LastSeenAt time.Time `json:"last_seen_at"`

	// Status — статус worker'а.
	Status WorkerStatus `json:"status"`
}

// NewWorkerRecord создаёт запись для только что стартовавшего worker'а.
func NewWorkerRecord(hostname, role string, labels map[string]string) WorkerRecord {
	now := time.Now().UTC()
	return WorkerRecord{
		Hostname:   hostname,
		Role:       role,
		Labels:     labels,
		StartedAt:  now,
		LastSeenAt: now,
		Status:     WorkerStatusActive,
	}
}

// Touch обновляет время последнего heartbeat.
func (w *WorkerRecord) Touch(now time.Time) {
	w.LastSeenAt = now.UTC()
}
