package cli

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tamirms/collide"
	collideerrors "github.com/tamirms/collide/errors"
	"github.com/tamirms/collide/internal/config"
)

func newSharesCmd() *cobra.Command {
	var total, workers int
	cmd := &cobra.Command{
		Use:   "shares",
		Short: "Print how a total is split across workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if total <= 0 {
				return fmt.Errorf("%w: %d", collideerrors.ErrInvalidTarget, total)
			}
			if workers < 0 {
				return fmt.Errorf("%w: %d", collideerrors.ErrInvalidWorkers, workers)
			}
			if workers == 0 {
				workers = runtime.NumCPU()
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "WORKER\tSHARE")
			for i, s := range collide.Shares(total, workers) {
				_, _ = fmt.Fprintf(w, "%d\t%d\n", i, s)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&total, "total", config.DefaultTotal, "identifiers to split")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = one per CPU)")
	return cmd
}
