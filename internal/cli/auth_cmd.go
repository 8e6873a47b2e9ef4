package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
)

var (
	errPasswordMismatch = errors.New("Passwords do not match")
	errRoleRequired     = errors.New("Role must be EMPLOYER or EMPLOYEE")
)

func newRegisterCmd(app *App) *cobra.Command {
	var (
		username, email   string
		password, confirm string
		role, employer    string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password != confirm {
				return errPasswordMismatch
			}
			role = strings.ToUpper(strings.TrimSpace(role))
			if role != string(model.RoleEmployer) && role != string(model.RoleEmployee) {
				return errRoleRequired
			}

			req := contract.RegisterRequest{
				Username: strings.TrimSpace(username),
				Email:    strings.TrimSpace(email),
				Password: password,
				Role:     role,
			}
			if role == string(model.RoleEmployee) && employer != "" {
				req.EmployerUsername = &employer
			}

			resp, err := app.Client.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), fmt.Sprintf("Registered and signed in as %s.", resp.User.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "repeat the password")
	cmd.Flags().StringVarP(&role, "role", "r", string(model.RoleEmployee), "EMPLOYER or EMPLOYEE")
	cmd.Flags().StringVar(&employer, "employer", "", "employer username (employees only)")

	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username or email",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.Client.Login(cmd.Context(), contract.LoginRequest{
				Username: strings.TrimSpace(username),
				Password: password,
			})
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), fmt.Sprintf("Signed in as %s.", resp.User.Username))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Client.Logout(cmd.Context()); err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Client.Me(cmd.Context())
			if err != nil {
				return err
			}
			printUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newEmployersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "employers <query>",
		Short: "Search employers by username",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.Client.SearchEmployers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, styleDim.Render("No employers found."))
				return nil
			}
			for _, u := range users {
				fmt.Fprintln(out, u.Username)
			}
			return nil
		},
	}
}
