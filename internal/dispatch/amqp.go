package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/celeroot/internal/domain"
	"github.com/shaiso/celeroot/internal/mq"
)

// AMQPDispatcher отправляет задачи через RabbitMQ.
//
// Сообщение task.dispatch публикуется с routing key = hostname цели
// и попадает в dispatch-очередь этого worker'а. Имена задач
// валидируются по списку известных — неизвестная задача отклоняется
// здесь, до публикации.
type AMQPDispatcher struct {
	publisher *mq.Publisher
	known     map[string]bool
	logger    *slog.Logger
}

// NewAMQPDispatcher создаёт dispatcher.
// knownTasks — список зарегистрированных имён задач (tasks.Registry.Names()).
func NewAMQPDispatcher(publisher *mq.Publisher, knownTasks []string, logger *slog.Logger) *AMQPDispatcher {
	known := make(map[string]bool, len(knownTasks))
	for _, name := range knownTasks {
		known[name] = true
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AMQPDispatcher{
		publisher: publisher,
		known:     known,
		logger:    logger,
	}
}

// Submit публикует dispatch задачи в очередь целевого worker'а.
func (d *AMQPDispatcher) Submit(ctx context.Context, schedule, task string, target domain.WorkerRecord, params map[string]any) (*Submission, error) {
	if !d.known[task] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, task)
	}

	sub := &Submission{
		ID:          uuid.New(),
		Task:        task,
		Target:      target.Hostname,
		SubmittedAt: time.Now().UTC(),
	}

	payload := mq.TaskDispatchPayload{
		SubmissionID: sub.ID,
		Schedule:     schedule,
		Task:         task,
		Target:       target.Hostname,
		Params:       params,
	}

	if err := d.publisher.PublishTaskDispatch(ctx, payload); err != nil {
		return nil, fmt.Errorf("submit task %q to %q: %w", task, target.Hostname, err)
	}

	d.logger.Debug("task submitted",
		"submission_id", sub.ID,
		"schedule", schedule,
		"task", task,
		"target", target.Hostname,
	)

	return sub, nil
}
