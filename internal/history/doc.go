// Package history ведёт журнал dispatch-попыток в Postgres.
//
// Журнал опционален: планировщик работает и без него, Recorder
// подключается в cmd/celeroot-worker только при заданном DB_URL.
// Ошибка записи не влияет на исход цикла — история best-effort.
package history
