// Package cli provides the Cobra-based deskbell command line.
package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deskbell/internal/config"
	"github.com/llehouerou/deskbell/internal/errmsg"
	"github.com/llehouerou/deskbell/internal/notification"
	"github.com/llehouerou/deskbell/internal/notify"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// HostFactory builds the notification host for an application name.
type HostFactory func(appName string) (notify.Host, error)

// app carries state shared by every subcommand.
type app struct {
	newHost    HostFactory
	configPath string
	verbose    bool
	interact   bool

	log *slog.Logger
	cfg *config.Config
}

// Execute runs the deskbell command line against the platform host.
func Execute() error {
	return NewRootCmd(notify.New).Execute()
}

// NewRootCmd builds the command tree. newHost is called once per command run.
func NewRootCmd(newHost HostFactory) *cobra.Command {
	return newRootCmd(newHost, true)
}

func newRootCmd(newHost HostFactory, interact bool) *cobra.Command {
	a := &app{newHost: newHost, interact: interact}

	root := &cobra.Command{
		Use:   "deskbell",
		Short: "Send desktop notifications",
		Long: `deskbell sends desktop notifications through the session notification service.

Defaults are read from $XDG_CONFIG_HOME/deskbell/config.toml, ./deskbell.toml
and DESKBELL_* environment variables.`,
		Example: `  # Show a notification that closes after 5 seconds
  deskbell send "Build finished" --body "all tests passed" --delay 5s

  # Ask for permission up front
  deskbell permission --request`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to an extra config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newSendCmd(a), newPermissionCmd(a), newConfigCmd(a))
	return root
}

func (a *app) setup(stderr io.Writer) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var extra []string
	if a.configPath != "" {
		if _, err := os.Stat(a.configPath); err != nil {
			return errors.New(errmsg.FormatWith(errmsg.OpConfigLoad, a.configPath, err))
		}
		extra = append(extra, a.configPath)
	}

	cfg, err := config.Load(extra...)
	if err != nil {
		return errors.New(errmsg.Format(errmsg.OpConfigLoad, err))
	}
	a.cfg = cfg
	return nil
}

// provider connects to the host and wraps it with the configured defaults.
func (a *app) provider() (*notification.Provider, error) {
	host, err := a.newHost(a.cfg.AppName)
	if err != nil {
		return nil, errors.New(errmsg.Format(errmsg.OpHostConnect, err))
	}
	return notification.NewProvider(host,
		notification.WithDefaults(a.cfg.DefaultOptions()),
		notification.WithLogger(a.log),
	), nil
}

// awaitPermission resolves the permission state, asking the host if needed.
func awaitPermission(p *notification.Provider) notify.Permission {
	result := make(chan notify.Permission, 1)
	p.Gate().Request(func(perm notify.Permission) { result <- perm })
	return <-result
}
