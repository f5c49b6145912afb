// Package domain содержит доменные типы Celeroot.
//
// Типы — чистые структуры данных с предикатами, без I/O:
//   - config.go   — ClusterConfig (топология), ScheduleSpec, ConfigSnapshot
//   - selector.go — Selector и матчинг worker'ов
//   - worker.go   — WorkerRecord (регистрация worker'а в кластере)
//
// Durable-состояние (записи worker'ов, локи, last-run) живёт в
// координационном store (internal/coord); domain описывает только
// его форму на проводе.
package domain
