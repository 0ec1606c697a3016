package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deskbell/internal/errmsg"
	"github.com/llehouerou/deskbell/internal/notification"
	"github.com/llehouerou/deskbell/internal/notify"
)

// ErrPermissionDenied is returned when the host refuses to show notifications.
var ErrPermissionDenied = errors.New("notification permission denied")

var errNotShown = errors.New("notification service did not show it")

type sendFlags struct {
	body    string
	icon    string
	urgency string
	timeout int32
	delay   time.Duration
	wait    bool
}

func newSendCmd(a *app) *cobra.Command {
	var f sendFlags

	cmd := &cobra.Command{
		Use:   "send TITLE",
		Short: "Show a notification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := ""
			if len(args) > 0 {
				title = args[0]
			}
			opts := f.options(cmd.Flags().Changed("delay"))
			return a.send(cmd, title, opts, f.wait)
		},
	}

	cmd.Flags().StringVarP(&f.body, "body", "b", "", "Body text")
	cmd.Flags().StringVarP(&f.icon, "icon", "i", "", "Icon name or image path")
	cmd.Flags().StringVarP(&f.urgency, "urgency", "u", "", "Urgency: low, normal or critical")
	cmd.Flags().Int32VarP(&f.timeout, "timeout", "t", 0, "Server expiry in ms (-1 server default)")
	cmd.Flags().DurationVarP(&f.delay, "delay", "d", 0, "Close the notification after this long (0 disables)")
	cmd.Flags().BoolVarP(&f.wait, "wait", "w", false, "Wait until the notification is closed")

	return cmd
}

func (f sendFlags) options(delaySet bool) notify.Options {
	opts := notify.Options{
		Body:    f.body,
		Icon:    f.icon,
		Urgency: notify.ParseUrgency(f.urgency),
		Timeout: f.timeout,
		Delay:   f.delay,
	}
	// an explicit --delay 0 overrides a configured default
	if delaySet && f.delay == 0 {
		opts.Delay = -1
	}
	return opts
}

func (a *app) send(cmd *cobra.Command, title string, opts notify.Options, wait bool) error {
	out := cmd.OutOrStdout()

	p, err := a.provider()
	if err != nil {
		return err
	}

	if !p.Supported() {
		return errors.New(errmsg.FormatWith(errmsg.OpNotificationShow, title, notification.ErrUnsupported))
	}
	if awaitPermission(p) != notify.PermissionGranted {
		return errors.New(errmsg.FormatWith(errmsg.OpNotificationShow, title, ErrPermissionDenied))
	}

	n, err := p.New(title, opts)
	if err != nil {
		return errors.New(errmsg.FormatWith(errmsg.OpNotificationShow, title, err))
	}

	var clicked atomic.Bool
	n.On(notify.EventClick, func(notify.Event) { clicked.Store(true) })
	n.On(notify.EventAction, func(ev notify.Event) {
		fmt.Fprintf(out, "%s %s\n", okStyle.Render("action"), ev.Action)
	})

	if n.State() != notification.StateActive {
		return errors.New(errmsg.FormatWith(errmsg.OpNotificationShow, title, errNotShown))
	}

	fmt.Fprintf(out, "%s %q %s\n", okStyle.Render("shown"), title, dimStyle.Render(fmt.Sprintf("(id %d)", n.Native().ID())))
	if delay := n.Options().Delay; delay > 0 {
		now := time.Now()
		fmt.Fprintf(out, "%s\n", dimStyle.Render("closes "+humanize.RelTime(now, now.Add(delay), "ago", "from now")))
	}

	if !wait && n.Options().Delay <= 0 {
		return nil
	}
	// the process must outlive the delay timer
	return a.waitClosed(cmd.Context(), n, &clicked)
}

func (a *app) waitClosed(ctx context.Context, n *notification.Notification, clicked *atomic.Bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.interact {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Writer = os.Stderr
		s.Suffix = " waiting for notification to close"
		s.Start()
		defer s.Stop()
	}

	select {
	case <-n.Done():
	case <-ctx.Done():
		if err := n.Close(); err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpNotificationClose, n.Title(), err))
		}
	}

	if clicked.Load() {
		a.log.Info("notification clicked", "title", n.Title())
	}
	return nil
}
