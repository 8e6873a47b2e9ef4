package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
	"timesheets.service/internal/dashboard"
	"timesheets.service/internal/tracker"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")

	styleOK     = lipgloss.NewStyle().Foreground(colorGreen)
	styleError  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleTitle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

const colGap = 2

// renderTable aligns columns by their visible width.
func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}

func printDashboard(w io.Writer, v dashboard.View) {
	if v.Banner != "" {
		fmt.Fprintln(w, styleError.Render(v.Banner))
	}
	if v.Unavailable || v.Loading {
		fmt.Fprintln(w, styleDim.Render("Dashboard unavailable."))
		return
	}

	fmt.Fprintln(w, styleTitle.Render(v.Heading))
	if v.IsEmployee {
		fmt.Fprintf(w, "Employer: %s\n", v.EmployerName)
		fmt.Fprintf(w, "Accumulated: %s\n", v.AccumulatedHours)
		fmt.Fprintf(w, "Status: %s\n", v.Status)
	}
	if v.IsEmployer {
		employees := "none"
		if len(v.Employees) > 0 {
			employees = strings.Join(v.Employees, ", ")
		}
		fmt.Fprintf(w, "Employees: %s\n", employees)
		if v.Search != "" {
			fmt.Fprintf(w, "Filter: %q\n", v.Search)
		}
	}
	fmt.Fprintln(w)

	if len(v.Records) == 0 {
		fmt.Fprintln(w, styleDim.Render("No records."))
		return
	}
	rows := make([][]string, 0, len(v.Records))
	for _, r := range v.Records {
		rows = append(rows, []string{r.Employee, r.ClockIn, r.ClockOut, r.Hours})
	}
	fmt.Fprint(w, renderTable([]string{"Employee", "Clock In", "Clock Out", "Hours"}, rows))
}

func printUser(w io.Writer, u contract.User) {
	fmt.Fprintf(w, "%s <%s> (%s)\n", u.Username, u.Email, u.Role)
	if u.EmployerName != nil {
		fmt.Fprintf(w, "Employer: %s\n", *u.EmployerName)
	}
}

func printRecords(w io.Writer, records []model.ClockRecord, loc *time.Location) {
	if len(records) == 0 {
		fmt.Fprintln(w, styleDim.Render("No records."))
		return
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		r := dashboard.FormatRecord(rec, loc)
		rows = append(rows, []string{r.Employee, r.ClockIn, r.ClockOut, r.Hours})
	}
	fmt.Fprint(w, renderTable([]string{"Employee", "Clock In", "Clock Out", "Hours"}, rows))
}

func printSummary(w io.Writer, rows []tracker.SummaryRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, styleDim.Render("No hours recorded."))
		return
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		hours := r.Hours
		out = append(out, []string{r.Employee, dashboard.FormatHours(&hours)})
	}
	fmt.Fprint(w, renderTable([]string{"Employee", "Total"}, out))
}

func printOK(w io.Writer, msg string) {
	fmt.Fprintln(w, styleOK.Render(msg))
}
