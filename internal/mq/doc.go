// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением (reconnect, graceful shutdown)
//   - topology.go   — объявление exchanges, queues, bindings
//   - publisher.go  — публикация сообщений
//   - consumer.go   — потребление сообщений
//
// Топология celeroot: один direct-exchange celeroot.tasks, очередь
// tasks.dispatch.<hostname> на каждый worker (routing key — hostname)
// и DLQ для недоставленных dispatch'ей. Планировщик публикует
// task.dispatch, worker потребляет из своей очереди.
package mq
