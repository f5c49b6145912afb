package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/config"
	"github.com/shaiso/celeroot/internal/domain"
	"github.com/shaiso/celeroot/internal/scheduler"
)

// NewScheduleCmd создаёт группу команд управления schedules.
func NewScheduleCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage schedules",
	}

	cmd.AddCommand(
		newScheduleListCmd(fileFn, outputFn),
		newScheduleAddCmd(fileFn, outputFn),
		newScheduleRemoveCmd(fileFn, outputFn),
		newScheduleEnableCmd(fileFn, outputFn, true),
		newScheduleEnableCmd(fileFn, outputFn, false),
	)

	return cmd
}

func newScheduleListCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			names := make([]string, 0, len(cfg.Schedules))
			for name := range cfg.Schedules {
				names = append(names, name)
			}
			sort.Strings(names)

			headers := []string{"NAME", "CRON", "TASK", "TARGETS", "ENABLED"}
			rows := make([][]string, len(names))
			for i, name := range names {
				sched := cfg.Schedules[name]
				rows[i] = []string{
					sched.Name,
					sched.Cron,
					sched.Task,
					formatTargets(sched.Targets),
					strconv.FormatBool(sched.Enabled),
				}
			}

			out.Print(headers, rows, cfg.Schedules)
			return nil
		},
	}
}

func newScheduleAddCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	var cronExpr string
	var task string
	var roles []string
	var labels string
	var description string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			if err := scheduler.ValidateCronExpr(cronExpr); err != nil {
				return fmt.Errorf("invalid --cron: %w", err)
			}

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			var targets []domain.Target
			for _, role := range roles {
				if _, ok := cfg.Roles[role]; !ok {
					return fmt.Errorf("role %q is not defined", role)
				}
				targets = append(targets, domain.Target{Selector: domain.Selector{Role: role}})
			}
			if labels != "" {
				parsed, err := config.ParseLabels(labels)
				if err != nil {
					return err
				}
				targets = append(targets, domain.Target{Selector: domain.Selector{Labels: parsed}})
			}
			if len(targets) == 0 {
				// Без селекторов schedule адресует весь флот
				targets = []domain.Target{{Selector: domain.Selector{}}}
			}

			cfg.AddSchedule(domain.ScheduleSpec{
				Name:        args[0],
				Cron:        cronExpr,
				Task:        task,
				Targets:     targets,
				Description: description,
				Enabled:     true,
			})

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule added: %s (push with 'celeroot config push')", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (e.g. '0 2 * * *')")
	cmd.Flags().StringVar(&task, "task", "", "Task to dispatch")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Target role selector (repeatable)")
	cmd.Flags().StringVar(&labels, "labels", "", "Target label selector as k=v,k2=v2")
	cmd.Flags().StringVar(&description, "description", "", "Schedule description")
	cmd.MarkFlagRequired("cron")
	cmd.MarkFlagRequired("task")

	return cmd
}

func newScheduleRemoveCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			if !cfg.RemoveSchedule(args[0]) {
				return fmt.Errorf("schedule %q not found", args[0])
			}

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule removed: %s", args[0]))
			return nil
		},
	}
}

func newScheduleEnableCmd(fileFn func() *ConfigFile, outputFn func() *Output, enable bool) *cobra.Command {
	use, short, verb := "enable", "Enable a schedule", "enabled"
	if !enable {
		use, short, verb = "disable", "Disable a schedule", "disabled"
	}

	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			sched, ok := cfg.Schedules[args[0]]
			if !ok {
				return fmt.Errorf("schedule %q not found", args[0])
			}
			sched.Enabled = enable
			cfg.Schedules[args[0]] = sched

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Schedule %s: %s", verb, args[0]))
			return nil
		},
	}
}

func formatTargets(targets []domain.Target) string {
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		switch {
		case t.Selector.Role != "":
			parts = append(parts, "role="+t.Selector.Role)
		case len(t.Selector.Labels) > 0:
			parts = append(parts, formatLabels(t.Selector.Labels))
		default:
			parts = append(parts, "*")
		}
	}
	return strings.Join(parts, " ")
}
