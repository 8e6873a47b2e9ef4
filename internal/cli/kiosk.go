package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"timesheets.service/internal/tracker"
)

const kioskHelp = `Commands:
  add <name>       register an employee
  select <name>    choose the employee for in/out
  in [name]        clock in (defaults to the selected employee)
  out [name]       clock out (defaults to the selected employee)
  list [filter]    show closed records, optionally filtered by name
  summary          total hours per employee
  employees        list registered employees
  help             show this help
  quit             leave the kiosk`

func newKioskCmd(app *App) *cobra.Command {
	var employer string

	cmd := &cobra.Command{
		Use:   "kiosk",
		Short: "Run an offline clock-in terminal",
		Long:  "Run an offline clock-in terminal. Nothing is saved when it exits.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if employer == "" {
				employer = app.Employer
			}
			opts := []tracker.Option{tracker.WithEmployer(employer)}
			if app.Now != nil {
				opts = append(opts, tracker.WithClock(app.Now))
			}
			k := &kiosk{
				app:     app,
				tracker: tracker.New(opts...),
				out:     cmd.OutOrStdout(),
			}
			return k.run(cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&employer, "employer", "", "employer name stamped on records")
	return cmd
}

type kiosk struct {
	app      *App
	tracker  *tracker.Tracker
	out      io.Writer
	selected string
}

func (k *kiosk) run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for {
		if k.app.interactive() {
			fmt.Fprint(k.out, k.prompt())
		}
		if !sc.Scan() {
			return sc.Err()
		}
		if quit := k.exec(strings.TrimSpace(sc.Text())); quit {
			return nil
		}
	}
}

func (k *kiosk) prompt() string {
	if k.selected == "" {
		return "> "
	}
	return fmt.Sprintf("[%s] > ", k.selected)
}

// exec runs one command line and reports whether the kiosk should stop.
func (k *kiosk) exec(line string) bool {
	if line == "" {
		return false
	}
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "add":
		if err := k.tracker.AddEmployee(arg); err != nil {
			k.fail(err)
			return false
		}
		name := strings.TrimSpace(arg)
		if k.selected == "" {
			k.selected = name
		}
		printOK(k.out, fmt.Sprintf("Added %s.", name))
	case "select":
		if !k.known(arg) {
			k.fail(fmt.Errorf("unknown employee %q", arg))
			return false
		}
		k.selected = arg
	case "in":
		name, err := k.target(arg)
		if err == nil {
			err = k.tracker.ClockIn(name)
		}
		if err != nil {
			k.fail(err)
			return false
		}
		printOK(k.out, fmt.Sprintf("%s clocked in.", name))
	case "out":
		name, err := k.target(arg)
		if err != nil {
			k.fail(err)
			return false
		}
		rec, err := k.tracker.ClockOut(name)
		if err != nil {
			k.fail(err)
			return false
		}
		printOK(k.out, fmt.Sprintf("%s clocked out after %.2f hours.", name, *rec.HoursWorked))
	case "list":
		printRecords(k.out, k.tracker.ListRecords(arg), k.app.location())
	case "summary":
		printSummary(k.out, k.tracker.SummaryRows())
	case "employees":
		for _, name := range k.tracker.Employees() {
			status := "out"
			if k.tracker.IsClockedIn(name) {
				status = "in"
			}
			fmt.Fprintf(k.out, "%s (%s)\n", name, status)
		}
	case "help", "?":
		fmt.Fprintln(k.out, kioskHelp)
	case "quit", "exit":
		return true
	default:
		k.fail(fmt.Errorf("unknown command %q, type help", verb))
	}
	return false
}

func (k *kiosk) target(arg string) (string, error) {
	if arg == "" {
		return k.selected, nil
	}
	if !k.known(arg) {
		return "", fmt.Errorf("unknown employee %q", arg)
	}
	return arg, nil
}

func (k *kiosk) known(name string) bool {
	for _, e := range k.tracker.Employees() {
		if e == name {
			return true
		}
	}
	return false
}

func (k *kiosk) fail(err error) {
	fmt.Fprintln(k.out, styleError.Render(err.Error()))
}
