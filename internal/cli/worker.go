package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/cluster"
	"github.com/shaiso/celeroot/internal/coord"
)

// NewWorkerCmd создаёт группу команд наблюдения за worker'ами.
func NewWorkerCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Inspect live workers",
	}

	cmd.AddCommand(newWorkerListCmd(outputFn))

	return cmd
}

func newWorkerListCmd(outputFn func() *Output) *cobra.Command {
	var redisURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live workers registered in the coordination store",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			store, err := coord.DialRedis(cmd.Context(), redisURL)
			if err != nil {
				return err
			}
			defer store.Close()

			registry := cluster.NewRegistry(cluster.RegistryConfig{Store: store})
			workers, err := registry.ListLive(cmd.Context())
			if err != nil {
				return err
			}

			headers := []string{"HOSTNAME", "ROLE", "STATUS", "STARTED_AT", "LAST_SEEN"}
			rows := make([][]string, len(workers))
			for i, w := range workers {
				rows[i] = []string{
					w.Hostname,
					w.Role,
					string(w.Status),
					w.StartedAt.Format(time.RFC3339),
					w.LastSeenAt.Format(time.RFC3339),
				}
			}

			out.Print(headers, rows, workers)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "redis-url", defaultRedisURL(), "Coordination store URL")

	return cmd
}
