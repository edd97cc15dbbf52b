package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yshengliao/antoree/observability/health"
)

func newHealthCmd(opts *globalOptions) *cobra.Command {
	var (
		endpoint string
		timeout  time.Duration
		slow     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the API and the session store are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			out := cmd.OutOrStdout()
			return withRuntime(ctx, opts, out, func(rt *runtime) error {
				checker := health.NewChecker(timeout)
				checker.Register("api", health.EndpointCheck(rt.client, endpoint, slow))
				checker.Register("store", health.StoreCheck(rt.store))

				results := checker.Check(ctx)
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CHECK\tSTATUS\tDURATION\tMESSAGE")
				for _, name := range checker.Names() {
					r := results[name]
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, r.Status, r.Duration.Round(time.Millisecond), r.Message)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				if status := health.Overall(results); status == health.StatusUnhealthy {
					return fmt.Errorf("health: %s", status)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "/health", "API path checked with GET")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "timeout of each check")
	cmd.Flags().DurationVar(&slow, "slow", time.Second, "report the API as degraded above this latency")
	return cmd
}
