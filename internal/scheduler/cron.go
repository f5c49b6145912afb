package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений.
// Стандартные 5 полей (минуты часы дни месяцы дни_недели),
// опционально 6-е поле секунд в начале.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// IsDue проверяет, пора ли выполнять schedule.
//
// Вычисляет ближайшую cron-границу строго после lastRun и возвращает
// true, если now уже достиг её. Семантика dom/dow — стандартная для
// cron: если ограничены оба поля, они объединяются через OR.
//
// Невалидное выражение — ошибка; вызывающий обязан трактовать её как
// «не due» и логировать, не прерывая цикл: один битый schedule не
// должен блокировать остальные.
func IsDue(cronExpr string, lastRun, now time.Time) (bool, error) {
	sched, err := cronParser.Parse(cronExpr)
	if err != nil {
		return false, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}

	next := sched.Next(lastRun)
	return !now.Before(next), nil
}

// NextBoundary возвращает ближайшую cron-границу строго после from.
func NextBoundary(cronExpr string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(cronExpr)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", cronExpr, err)
	}
	return sched.Next(from), nil
}

// ValidateCronExpr проверяет валидность cron-выражения.
// Используется CLI при редактировании конфигурации.
func ValidateCronExpr(cronExpr string) error {
	if _, err := cronParser.Parse(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}
	return nil
}
