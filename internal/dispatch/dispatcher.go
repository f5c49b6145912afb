package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/celeroot/internal/domain"
)

// Ошибки dispatch-слоя.
var (
	// ErrUnknownTask — задача с таким именем не зарегистрирована.
	// Вызывающий логирует и пропускает, это не повод ронять цикл.
	ErrUnknownTask = errors.New("unknown task")
)

// Submission — квитанция об отправленной задаче.
type Submission struct {
	// ID — уникальный идентификатор submission.
	ID uuid.UUID `json:"id"`

	// Task — идентификатор задачи.
	Task string `json:"task"`

	// Target — hostname целевого worker'а.
	Target string `json:"target"`

	// SubmittedAt — время отправки.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Dispatcher — интерфейс отправки именованной задачи worker'у.
//
// schedule — имя породившего dispatch schedule, доезжает до задачи
// на целевом worker'е. Submit не блокируется до завершения задачи:
// квитанция означает только, что отправка предпринята.
type Dispatcher interface {
	Submit(ctx context.Context, schedule, task string, target domain.WorkerRecord, params map[string]any) (*Submission, error)
}
