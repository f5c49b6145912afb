// Package dispatch определяет интерфейс передачи задач
// execution-substrate и его AMQP-реализацию.
//
// Submit — fire-and-forget: возвращает квитанцию Submission, не
// дожидаясь выполнения задачи на целевом worker'е. Планировщик
// продвигает last-run после попытки отправки, не после подтверждения
// выполнения (at-most-once-attempt).
package dispatch
