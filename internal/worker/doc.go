// Package worker реализует исполнительную часть процесса celeroot.
//
// Worker потребляет собственную dispatch-очередь RabbitMQ
// (tasks.dispatch.<hostname>) и выполняет задачи из tasks.Registry
// локально. Параллельно heartbeat-цикл поддерживает liveness-запись
// worker'а в координационном store — по ней планировщики остального
// флота резолвят цели селекторов.
//
// Каждый worker-процесс несёт рядом собственный планировщик
// (internal/scheduler.Runner); их жизненные циклы независимы и
// связываются только в cmd/celeroot-worker.
package worker
