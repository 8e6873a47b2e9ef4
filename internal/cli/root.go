// Package cli implements the timesheet command line: account commands and the
// dashboard against the REST API, plus an offline kiosk backed by the tracker.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"timesheets.service/internal/client"
	"timesheets.service/pkg/logger"
)

// App holds what CLI commands need.
type App struct {
	Client *client.Client
	Loc    *time.Location

	// Employer labels kiosk records.
	Employer string

	// Now overrides the kiosk clock. Nil means time.Now.
	Now func() time.Time

	// IsInteractive reports whether stdin is a terminal. The kiosk only
	// prints its prompt when it is.
	IsInteractive func() bool
}

// NewRootCmd creates the top-level "timesheet" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "timesheet",
		Short:         "Clock in, clock out and review timesheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetupCLI(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log API calls to stderr")

	root.AddCommand(
		newRegisterCmd(app),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newEmployersCmd(app),
		newDashboardCmd(app),
		newClockInCmd(app),
		newClockOutCmd(app),
		newKioskCmd(app),
	)

	return root
}

func (a *App) location() *time.Location {
	if a.Loc == nil {
		return time.Local
	}
	return a.Loc
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}
