package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/deskbell/internal/errmsg"
	"github.com/llehouerou/deskbell/internal/notify"
)

func newPermissionCmd(a *app) *cobra.Command {
	var request bool

	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Show or request notification permission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.provider()
			if err != nil {
				return err
			}

			state := p.Gate().State()
			if request {
				state = awaitPermission(p)
			}

			style := warnStyle
			if state == notify.PermissionGranted {
				style = okStyle
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.Render(state.String()))

			if request && state != notify.PermissionGranted {
				return errors.New(errmsg.Format(errmsg.OpPermissionRequest, ErrPermissionDenied))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&request, "request", "r", false, "Request permission if it is not decided yet")
	return cmd
}
