package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/config"
	"github.com/shaiso/celeroot/internal/domain"
)

// NewHostCmd создаёт группу команд управления хостами.
func NewHostCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Manage cluster hosts",
	}

	cmd.AddCommand(
		newHostListCmd(fileFn, outputFn),
		newHostAddCmd(fileFn, outputFn),
		newHostRemoveCmd(fileFn, outputFn),
	)

	return cmd
}

func newHostListCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured hosts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := fileFn().Load()
			if err != nil {
				return err
			}
			out := outputFn()

			hostnames := make([]string, 0, len(cfg.Hosts))
			for hostname := range cfg.Hosts {
				hostnames = append(hostnames, hostname)
			}
			sort.Strings(hostnames)

			headers := []string{"HOSTNAME", "ADDRESS", "ROLES", "LABELS", "ENABLED"}
			rows := make([][]string, len(hostnames))
			for i, hostname := range hostnames {
				host := cfg.Hosts[hostname]
				rows[i] = []string{
					host.Hostname,
					host.Address,
					strings.Join(host.Roles, ","),
					formatLabels(host.Labels),
					strconv.FormatBool(host.Enabled),
				}
			}

			out.Print(headers, rows, cfg.Hosts)
			return nil
		},
	}
}

func newHostAddCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	var address string
	var roles []string
	var labels string

	cmd := &cobra.Command{
		Use:   "add HOSTNAME",
		Short: "Add a host to the cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			for _, role := range roles {
				if _, ok := cfg.Roles[role]; !ok {
					return fmt.Errorf("role %q is not defined, add it first with 'celeroot role add'", role)
				}
			}

			parsed, err := config.ParseLabels(labels)
			if err != nil {
				return err
			}

			cfg.AddHost(domain.HostConfig{
				Hostname: args[0],
				Address:  address,
				Roles:    roles,
				Labels:   parsed,
				Enabled:  true,
			})

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Host added: %s", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&address, "address", "", "Host address")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Host role (repeatable)")
	cmd.Flags().StringVar(&labels, "labels", "", "Host labels as k=v,k2=v2")

	return cmd
}

func newHostRemoveCmd(fileFn func() *ConfigFile, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove HOSTNAME",
		Short: "Remove a host from the cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := fileFn()
			out := outputFn()

			cfg, err := file.Load()
			if err != nil {
				return err
			}

			if !cfg.RemoveHost(args[0]) {
				return fmt.Errorf("host %q not found", args[0])
			}

			if err := file.Save(cfg); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Host removed: %s", args[0]))
			return nil
		},
	}
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for key := range labels {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, key := range keys {
		pairs[i] = key + "=" + labels[key]
	}
	return strings.Join(pairs, ",")
}
