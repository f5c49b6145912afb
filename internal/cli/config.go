package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/coord"
	"github.com/shaiso/celeroot/internal/scheduler"
)

// NewConfigCmd создаёт группу команд управления конфигурацией кластера.
func NewConfigCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage cluster configuration",
	}

	cmd.AddCommand(
		newConfigInitCmd(fileFn, outputFn),
		newConfigShowCmd(fileFn, outputFn),
		newConfigValidateCmd(fileFn, outputFn),
		newConfigPushCmd(fileFn, outputFn),
	)

	return cmd
}

func newConfigInitCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default cluster configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			if file.Exists() && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", file.Path())
			}

			if err := file.Save(DefaultConfig()); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Configuration created: %s", file.Path()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func newConfigShowCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show cluster configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			headers := []string{"CLUSTER", "HOSTS", "ROLES", "SCHEDULES"}
			rows := [][]string{{
				cfg.Name,
				strconv.Itoa(len(cfg.Hosts)),
				strconv.Itoa(len(cfg.Roles)),
				strconv.Itoa(len(cfg.Schedules)),
			}}

			out.Print(headers, rows, cfg)
			return nil
		},
	}
}

func newConfigValidateCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate cluster configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			problems := cfg.Validate()

			// Синтаксис cron-выражений проверяем здесь: domain не
			// зависит от cron-парсера
			for name, sched := range cfg.Schedules {
				if sched.Cron == "" {
					continue
				}
				if err := scheduler.ValidateCronExpr(sched.Cron); err != nil {
					problems = append(problems, fmt.Sprintf("schedule %q: %v", name, err))
				}
			}

			if len(problems) > 0 {
				for _, p := range problems {
					out.Error(p)
				}
				return fmt.Errorf("configuration is invalid: %d problem(s)", len(problems))
			}

			out.Success("Configuration is valid")
			return nil
		},
	}
}

func newConfigPushCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish schedule snapshot to the coordination store",
		Long: `Publish the schedules section of the cluster configuration to the
coordination store. Every worker's embedded scheduler picks the new
snapshot up on its next poll cycle, no restarts required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			if problems := cfg.Validate(); len(problems) > 0 {
				return fmt.Errorf("refusing to push invalid configuration: %s", problems[0])
			}

			snapshot := cfg.Snapshot()
			data, err := json.Marshal(snapshot)
			if err != nil {
				return fmt.Errorf("marshal snapshot: %w", err)
			}

			store, err := coord.DialRedis(cmd.Context(), redisURL)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Set(cmd.Context(), coord.ConfigKey, string(data), 0); err != nil {
				return fmt.Errorf("push snapshot: %w", err)
			}

			out.Success(fmt.Sprintf("Pushed %d schedule(s) to %s", len(snapshot.Spec.Schedules), coord.ConfigKey))
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", defaultRedisURL(), "Coordination store URL")

	return cmd
}

func defaultRedisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379/0"
}
