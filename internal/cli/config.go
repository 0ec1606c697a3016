package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective notification defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			opts := a.cfg.DefaultOptions()

			fmt.Fprintf(out, "app_name = %q\n", a.cfg.AppName)
			fmt.Fprintf(out, "body     = %q\n", opts.Body)
			fmt.Fprintf(out, "icon     = %q\n", opts.Icon)
			fmt.Fprintf(out, "urgency  = %s\n", opts.Urgency)
			fmt.Fprintf(out, "timeout  = %d\n", opts.Timeout)
			fmt.Fprintf(out, "delay    = %s\n", opts.Delay)
			for _, k := range slices.Sorted(maps.Keys(opts.Actions)) {
				fmt.Fprintf(out, "action   %s = %q\n", k, opts.Actions[k])
			}
			for _, k := range slices.Sorted(maps.Keys(opts.Hints)) {
				fmt.Fprintf(out, "hint     %s = %v\n", k, opts.Hints[k])
			}
			return nil
		},
	}
}
