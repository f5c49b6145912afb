// Package cli реализует команды админ-инструмента celeroot.
//
// CLI работает с двумя поверхностями:
//   - YAML-файл конфигурации кластера (config, host, role, schedule) —
//     локальное редактирование топологии и schedules
//   - координационный store и журнал (config push, worker list,
//     history list) — публикация снапшота и наблюдение за флотом
//
// Worker'ы никогда не читают YAML напрямую: до них доходит только
// снапшот schedules, опубликованный командой config push.
package cli
