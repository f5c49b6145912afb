package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/celeroot/internal/history"
)

// NewHistoryCmd создаёт группу команд журнала dispatch'ей.
func NewHistoryCmd(outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect dispatch history",
	}

	cmd.AddCommand(newHistoryListCmd(outputFn))

	return cmd
}

func newHistoryListCmd(outputFn func() *Output) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent dispatches (requires DB_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			pool, err := history.NewPool(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			recorder := history.NewRecorder(pool)
			entries, err := recorder.ListRecent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			headers := []string{"SUBMITTED_AT", "SCHEDULE", "TASK", "TARGET", "SUBMISSION_ID"}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					e.SubmittedAt.Format(time.RFC3339),
					e.Schedule,
					e.Task,
					e.Target,
					e.SubmissionID,
				}
			}

			out.Print(headers, rows, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to show")

	return cmd
}
