// Package coord определяет координационный store — единственный
// разделяемый mutable-ресурс кластера.
//
// Store — key/value хранилище с TTL и атомарным set-if-absent.
// Через него проходят:
//   - снапшот конфигурации кластера (читает планировщик, пишет CLI)
//   - регистрации worker'ов с liveness TTL
//   - распределённые локи schedules
//   - last-run состояние schedules
//
// Реализации:
//   - redis.go  — production-backend на Redis (go-redis/v9)
//   - memory.go — in-memory backend для тестов и single-node запуска
//
// Все операции — одноключевые; мульти-ключевых транзакций нет,
// дизайн сознательно обходится без них.
package coord
