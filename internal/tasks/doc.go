// Package tasks содержит реестр и реализации задач worker'а.
//
// Задача — именованный Handler; worker при получении dispatch-сообщения
// находит Handler по имени в Registry и выполняет его локально.
// Стандартный набор (DefaultRegistry): APT-обслуживание хоста и
// health-check'и связности.
package tasks
