package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shaiso/celeroot/internal/mq"
	"github.com/shaiso/celeroot/internal/tasks"
	"github.com/shaiso/celeroot/internal/telemetry"
)

// handleTaskDispatch обрабатывает dispatch-сообщение из очереди worker'а.
func (w *Worker) handleTaskDispatch(ctx context.Context, delivery *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.TaskDispatchPayload](&delivery.Message)
	if err != nil {
		w.logger.Error("failed to parse task.dispatch payload", "error", err)
		// Некорректный payload не станет корректным при redelivery
		return nil
	}

	w.logger.Debug("received task.dispatch",
		"submission_id", payload.SubmissionID,
		"task", payload.Task,
	)

	result, err := w.executeTask(ctx, payload)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			// Неизвестная задача: redelivery не поможет, ack
			w.logger.Error("unknown task in dispatch, dropping",
				"submission_id", payload.SubmissionID,
				"task", payload.Task,
			)
			telemetry.TaskExecutions.WithLabelValues(payload.Task, "unknown").Inc()
			return nil
		}

		w.logger.Error("task execution failed",
			"submission_id", payload.SubmissionID,
			"task", payload.Task,
			"error", err,
		)
		telemetry.TaskExecutions.WithLabelValues(payload.Task, "failed").Inc()
		// Nack → requeue/DLQ решает consumer
		return err
	}

	telemetry.TaskExecutions.WithLabelValues(payload.Task, "succeeded").Inc()
	w.logger.Info("task executed",
		"submission_id", payload.SubmissionID,
		"task", payload.Task,
		"outputs", len(result.Outputs),
	)
	return nil
}

// executeTask находит Handler в реестре и выполняет его с таймаутом.
func (w *Worker) executeTask(ctx context.Context, payload mq.TaskDispatchPayload) (*tasks.Result, error) {
	handler, err := w.tasks.Get(payload.Task)
	if err != nil {
		return nil, err
	}

	execCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	started := time.Now()
	result, err := handler.Execute(execCtx, &tasks.Request{
		Schedule: payload.Schedule,
		Params:   payload.Params,
	})
	if err != nil {
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrExecutionTimeout, payload.Task, w.taskTimeout)
		}
		return nil, fmt.Errorf("execute %s: %w", payload.Task, err)
	}

	w.logger.Debug("task completed",
		"task", payload.Task,
		"duration", time.Since(started),
	)

	if result == nil {
		result = tasks.NewResult(nil)
	}
	return result, nil
}
