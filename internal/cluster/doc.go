// Package cluster реализует членство и взаимное исключение
// поверх координационного store.
//
// Компоненты:
//   - registry.go  — регистрация worker'ов с liveness TTL и heartbeat
//   - lock.go      — распределённый TTL-лок на выполнение schedule
//   - partition.go — детерминированное партиционирование schedules
//     по worker'ам без координации
//
// Партиционирование — advisory: оно лишь сокращает лишние проверки
// и contention на локах. Единственная строгая гарантия взаимного
// исключения — ScheduleLock.
package cluster
