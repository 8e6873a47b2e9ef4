package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"timesheets.service/internal/dashboard"
)

func newDashboardCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show clock status and timesheet records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := dashboard.NewController(app.Client, dashboard.WithLocation(app.location()))
			ctrl.SetSearch(search)
			err := ctrl.Refresh(cmd.Context())
			printDashboard(cmd.OutOrStdout(), ctrl.View())
			return err
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter records by employee name (employers)")
	return cmd
}

func newClockInCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clock-in",
		Short: "Start a shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClockAction(cmd, app, dashboard.ActionClockIn)
		},
	}
}

func newClockOutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clock-out",
		Short: "End the current shift",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClockAction(cmd, app, dashboard.ActionClockOut)
		},
	}
}

// runClockAction loads the dashboard so the action is checked against the
// server's view, performs it and prints the refreshed dashboard.
func runClockAction(cmd *cobra.Command, app *App, action dashboard.Action) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	ctrl := dashboard.NewController(app.Client, dashboard.WithLocation(app.location()))
	if err := ctrl.Refresh(ctx); err != nil {
		return err
	}

	var err error
	done := "Clocked in."
	if action == dashboard.ActionClockIn {
		err = ctrl.ClockIn(ctx)
	} else {
		done = "Clocked out."
		err = ctrl.ClockOut(ctx)
	}
	if errors.Is(err, dashboard.ErrActionUnavailable) {
		return unavailableReason(ctrl.View(), action)
	}
	if err != nil {
		return err
	}

	printOK(out, done)
	printDashboard(out, ctrl.View())
	return nil
}

func unavailableReason(v dashboard.View, action dashboard.Action) error {
	switch {
	case !v.IsEmployee:
		return errors.New("Only employees can clock in/out")
	case action == dashboard.ActionClockIn:
		return errors.New("Already clocked in")
	default:
		return errors.New("No active clock-in record found")
	}
}
