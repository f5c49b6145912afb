package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeTasks Exchange = "celeroot.tasks"
	ExchangeDLQ   Exchange = "celeroot.dlq"
)

// Routing keys.
const (
	RoutingKeyDLQ RoutingKey = "dispatch"
)

// DLQQueue — очередь недоставленных dispatch-сообщений.
const DLQQueue Queue = "dlq.dispatch"

// WorkerQueue возвращает имя dispatch-очереди worker'а.
func WorkerQueue(hostname string) Queue {
	return Queue("tasks.dispatch." + hostname)
}

// SetupTopology объявляет exchanges и DLQ.
// Идемпотентно; вызывается каждым процессом при старте. Очереди
// worker'ов объявляются самими worker'ами (DeclareWorkerQueue).
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		exchanges := []Exchange{ExchangeTasks, ExchangeDLQ}
		for _, ex := range exchanges {
			err := ch.ExchangeDeclare(
				string(ex), // name
				"direct",   // type
				true,       // durable
				false,      // auto-deleted
				false,      // internal
				false,      // no-wait
				nil,        // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex, err)
			}
		}

		_, err := ch.QueueDeclare(
			string(DLQQueue), // name
			true,             // durable
			false,            // delete when unused
			false,            // exclusive
			false,            // no-wait
			nil,              // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", DLQQueue, err)
		}

		if err := ch.QueueBind(string(DLQQueue), string(RoutingKeyDLQ), string(ExchangeDLQ), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", DLQQueue, ExchangeDLQ, err)
		}

		return nil
	})
}

// DeclareWorkerQueue объявляет dispatch-очередь worker'а и привязывает
// её к exchange по hostname. Недоставленные сообщения уходят в DLQ.
func DeclareWorkerQueue(ctx context.Context, conn *Connection, hostname string) error {
	queue := WorkerQueue(hostname)

	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		_, err := ch.QueueDeclare(
			string(queue), // name
			true,          // durable
			false,         // delete when unused
			false,         // exclusive
			false,         // no-wait
			amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQ),
			},
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", queue, err)
		}

		// routing key = hostname: планировщик адресует dispatch конкретному worker'у
		if err := ch.QueueBind(string(queue), hostname, string(ExchangeTasks), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", queue, ExchangeTasks, err)
		}

		return nil
	})
}
