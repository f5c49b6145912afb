// Package scheduler реализует встроенный распределённый планировщик.
//
// Вместо выделенного процесса-планировщика (single point of failure)
// каждый worker флота запускает собственный Runner. Worker'ы не
// координируются напрямую: партиционирование по md5-bucket'ам решает,
// кто оценивает schedule (internal/cluster.Owns), а распределённый
// лок гарантирует, что due-момент исполнит не более одного worker'а.
//
// Структура:
//   - cron.go    — due-оценка cron-выражений (robfig/cron)
//   - runner.go  — control loop: конфиг → партиционирование → due →
//     lock → цели → dispatch → persist last-run
//   - outcome.go — типизированные исходы цикла (CycleReport)
//
// Использование:
//
//	runner := scheduler.New(scheduler.Config{
//	    Store:      store,
//	    Registry:   registry,
//	    Lock:       cluster.NewScheduleLock(store),
//	    Dispatcher: dispatcher,
//	    Hostname:   hostname,
//	    Logger:     logger,
//	})
//	runner.Start(ctx)
//	defer runner.Stop()
//
// Гарантии и их границы: захват лока — единственное строгое взаимное
// исключение; партиционирование advisory. Крах между dispatch'ем и
// записью last-run может привести к повторному dispatch'у на
// следующей границе — дизайн сознательно принимает это вместо
// распределённых транзакций.
package scheduler
