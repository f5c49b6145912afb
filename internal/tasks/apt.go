package tasks

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Имена APT-задач.
const (
	TaskCheckSecurityUpdates  = "check-security-updates"
	TaskCleanupUnusedPackages = "cleanup-unused-packages"
	TaskUpdatePackageCache    = "update-package-cache"
)

// commandRunner выполняет системную команду и возвращает stdout.
// Подменяется в тестах.
type commandRunner func(ctx context.Context, name string, args ...string) (string, error)

func runCommand(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolMissing, name)
	}

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%w: %s %s: %v", ErrCommandFailed, name, strings.Join(args, " "), err)
	}
	return string(out), nil
}

var aptListLine = regexp.MustCompile(`^(\S+)/(\S+)\s+(\S+)`)

// parseAptList разбирает вывод `apt list` в map пакет → версия.
// Строки Listing/WARNING пропускаются.
func parseAptList(output string) map[string]string {
	packages := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" || strings.HasPrefix(line, "WARNING") || strings.HasPrefix(line, "Listing") {
			continue
		}
		if m := aptListLine.FindStringSubmatch(line); m != nil {
			packages[m[1]] = m[3]
		}
	}
	return packages
}

// parseUpgradable выделяет из вывода `apt list --upgradable` все
// обновляемые пакеты и подмножество security-обновлений.
func parseUpgradable(output string) (upgradeable, security []string) {
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if !strings.Contains(line, "/") || !strings.Contains(line, "upgradable") {
			continue
		}
		name := strings.SplitN(line, "/", 2)[0]
		upgradeable = append(upgradeable, name)

		lower := strings.ToLower(line)
		if strings.Contains(lower, "security") || strings.Contains(lower, "urgent") || strings.Contains(lower, "critical") {
			security = append(security, name)
		}
	}
	return upgradeable, security
}

// CheckSecurityUpdatesTask проверяет доступные security-обновления
// через `apt list --upgradable`.
type CheckSecurityUpdatesTask struct {
	run commandRunner
}

// NewCheckSecurityUpdatesTask создаёт задачу проверки обновлений.
func NewCheckSecurityUpdatesTask() *CheckSecurityUpdatesTask {
	return &CheckSecurityUpdatesTask{run: runCommand}
}

func (t *CheckSecurityUpdatesTask) Name() string {
	return TaskCheckSecurityUpdates
}

func (t *CheckSecurityUpdatesTask) Execute(ctx context.Context, _ *Request) (*Result, error) {
	out, err := t.run(ctx, "apt", "list", "--upgradable")
	if err != nil {
		return nil, fmt.Errorf("check security updates: %w", err)
	}

	upgradeable, security := parseUpgradable(out)

	// Полный список может быть большим — наружу отдаём первые 10
	listed := upgradeable
	if len(listed) > 10 {
		listed = listed[:10]
	}

	return NewResult(map[string]any{
		"upgradeable_count":    len(upgradeable),
		"security_count":       len(security),
		"upgradeable_packages": listed,
		"security_packages":    security,
	}), nil
}

// CleanupUnusedPackagesTask чистит неиспользуемые пакеты и кэш APT
// (autoremove + autoclean).
type CleanupUnusedPackagesTask struct {
	run commandRunner
}

// NewCleanupUnusedPackagesTask создаёт задачу очистки пакетов.
func NewCleanupUnusedPackagesTask() *CleanupUnusedPackagesTask {
	return &CleanupUnusedPackagesTask{run: runCommand}
}

func (t *CleanupUnusedPackagesTask) Name() string {
	return TaskCleanupUnusedPackages
}

func (t *CleanupUnusedPackagesTask) Execute(ctx context.Context, _ *Request) (*Result, error) {
	autoremove, err := t.run(ctx, "apt", "autoremove", "-y")
	if err != nil {
		return nil, fmt.Errorf("apt autoremove: %w", err)
	}

	autoclean, err := t.run(ctx, "apt", "autoclean")
	if err != nil {
		return nil, fmt.Errorf("apt autoclean: %w", err)
	}

	return NewResult(map[string]any{
		"autoremove": strings.TrimSpace(autoremove),
		"autoclean":  strings.TrimSpace(autoclean),
	}), nil
}

// UpdatePackageCacheTask обновляет кэш пакетов APT.
type UpdatePackageCacheTask struct {
	run commandRunner
}

// NewUpdatePackageCacheTask создаёт задачу обновления кэша.
func NewUpdatePackageCacheTask() *UpdatePackageCacheTask {
	return &UpdatePackageCacheTask{run: runCommand}
}

func (t *UpdatePackageCacheTask) Name() string {
	return TaskUpdatePackageCache
}

func (t *UpdatePackageCacheTask) Execute(ctx context.Context, _ *Request) (*Result, error) {
	if _, err := t.run(ctx, "apt", "update"); err != nil {
		return nil, fmt.Errorf("apt update: %w", err)
	}

	out, err := t.run(ctx, "apt", "list", "--installed")
	if err != nil {
		return nil, fmt.Errorf("apt list --installed: %w", err)
	}

	return NewResult(map[string]any{
		"cache_updated":   true,
		"installed_count": len(parseAptList(out)),
	}), nil
}
