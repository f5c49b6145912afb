package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/celeroot/internal/domain"
)

// DefaultConfigPath — путь к файлу конфигурации кластера по умолчанию.
const DefaultConfigPath = "celeroot.yml"

// ErrConfigNotFound — файл конфигурации не существует.
var ErrConfigNotFound = errors.New("configuration file not found")

// ConfigFile — YAML-файл конфигурации кластера.
//
// Файл — источник истины топологии и schedules; worker'ы его не
// читают. В координационный store попадает только снапшот schedules
// (команда config push).
type ConfigFile struct {
	path string
}

// NewConfigFile создаёт ConfigFile для указанного пути.
// Пустой путь — DefaultConfigPath.
func NewConfigFile(path string) *ConfigFile {
	if path == "" {
		path = DefaultConfigPath
	}
	return &ConfigFile{path: path}
}

// Path возвращает путь к файлу.
func (f *ConfigFile) Path() string {
	return f.path
}

// Exists проверяет, существует ли файл.
func (f *ConfigFile) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load читает и разбирает конфигурацию кластера.
func (f *ConfigFile) Load() (*domain.ClusterConfig, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run 'celeroot config init')", ErrConfigNotFound, f.path)
		}
		return nil, fmt.Errorf("read config %s: %w", f.path, err)
	}

	var cfg domain.ClusterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", f.path, err)
	}
	return &cfg, nil
}

// Save сериализует и записывает конфигурацию кластера.
func (f *ConfigFile) Save(cfg *domain.ClusterConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", f.path, err)
	}
	return nil
}

// DefaultConfig строит стартовую конфигурацию кластера:
// две роли, два хоста-примера и ежедневная проверка security-обновлений.
func DefaultConfig() *domain.ClusterConfig {
	cfg := domain.NewClusterConfig("default-cluster")
	cfg.Description = "Default celeroot cluster configuration"

	cfg.AddRole(domain.RoleConfig{
		Name:        "webserver",
		Description: "Web server role",
		Tasks:       []string{"check-security-updates", "update-package-cache", "ping"},
	})
	cfg.AddRole(domain.RoleConfig{
		Name:        "database",
		Description: "Database server role",
		Tasks:       []string{"check-security-updates", "cleanup-unused-packages", "ping"},
	})

	cfg.AddHost(domain.HostConfig{
		Hostname: "web01",
		Address:  "10.0.1.10",
		Roles:    []string{"webserver"},
		Labels:   map[string]string{"environment": "production", "datacenter": "us-east-1"},
		Enabled:  true,
	})
	cfg.AddHost(domain.HostConfig{
		Hostname: "db01",
		Address:  "10.0.2.10",
		Roles:    []string{"database"},
		Labels:   map[string]string{"environment": "production", "datacenter": "us-east-1"},
		Enabled:  true,
	})

	cfg.AddSchedule(domain.ScheduleSpec{
		Name: "security-updates",
		Cron: "0 2 * * *",
		Task: "check-security-updates",
		Targets: []domain.Target{
			{Selector: domain.Selector{Role: "webserver"}},
			{Selector: domain.Selector{Role: "database"}},
		},
		Description: "Daily security update check",
		Enabled:     true,
	})

	return cfg
}
