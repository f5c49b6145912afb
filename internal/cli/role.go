package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/domain"
)

// NewRoleCmd создаёт группу команд управления ролями.
func NewRoleCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage cluster roles",
	}

	cmd.AddCommand(
		newRoleListCmd(fileFn, outputFn),
		newRoleAddCmd(fileFn, outputFn),
		newRoleRemoveCmd(fileFn, outputFn),
	)

	return cmd
}

func newRoleListCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			names := make([]string, 0, len(cfg.Roles))
			for name := range cfg.Roles {
				names = append(names, name)
			}
			sort.Strings(names)

			headers := []string{"NAME", "DESCRIPTION", "TASKS"}
			rows := make([][]string, len(names))
			for i, name := range names {
				role := cfg.Roles[name]
				rows[i] = []string{role.Name, role.Description, strings.Join(role.Tasks, ",")}
			}

			out.Print(headers, rows, cfg.Roles)
			return nil
		},
	}
}

func newRoleAddCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	var description string
	var taskNames []string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a role to the cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			cfg.AddRole(domain.RoleConfig{
				Name:        args[0],
				Description: description,
				Tasks:       taskNames,
			})

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Role added: %s", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Role description")
	cmd.Flags().StringSliceVar(&taskNames, "task", nil, "Allowed task (repeatable)")

	return cmd
}

func newRoleRemoveCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a role and unassign it from all hosts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			if !cfg.RemoveRole(args[0]) {
				return fmt.Errorf("role %q not found", args[0])
			}

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Role removed: %s", args[0]))
			return nil
		},
	}
}
