package dashboard

import (
	"fmt"
	"strings"
	"time"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
)

// TimestampLayout renders as M/D/YYYY h:mm:ss AM/PM.
const TimestampLayout = "1/2/2006 3:04:05 PM"

const (
	roleEmployer = string(model.RoleEmployer)
	roleEmployee = string(model.RoleEmployee)
)

// RecordRow is one formatted timesheet row.
type RecordRow struct {
	ID       int64
	Employee string
	ClockIn  string
	ClockOut string
	Hours    string
}

// View is the render-ready projection of a State.
type View struct {
	Loading     bool
	Unavailable bool
	Banner      string

	Role         string
	IsEmployer   bool
	IsEmployee   bool
	Heading      string
	EmployerName string

	AccumulatedHours string
	Status           string
	ClockInEnabled   bool
	ClockOutEnabled  bool

	Employees     []string
	SearchEnabled bool
	Search        string
	Records       []RecordRow
}

// Render builds the view for s, formatting timestamps in loc.
func Render(s State, loc *time.Location) View {
	if loc == nil {
		loc = time.Local
	}
	v := View{
		Loading: s.Loading(),
		Banner:  s.Banner,
		Search:  s.Search,
	}
	if s.Snapshot == nil {
		v.Unavailable = !v.Loading
		return v
	}

	snap := s.Snapshot
	busy := s.Busy()
	v.Role = snap.Role
	v.IsEmployer = snap.Role == roleEmployer
	v.IsEmployee = snap.Role == roleEmployee
	v.SearchEnabled = v.IsEmployer
	if v.IsEmployer {
		v.Heading = "Employee Clock Logs"
	} else {
		v.Heading = "My Clock Logs"
	}
	if snap.EmployerName != nil {
		v.EmployerName = *snap.EmployerName
	}

	var accumulated float64
	if snap.AccumulatedHours != nil {
		accumulated = *snap.AccumulatedHours
	}
	v.AccumulatedHours = FormatHours(&accumulated)

	if snap.ClockedIn {
		v.Status = "Currently Clocked In"
	} else {
		v.Status = "Currently Clocked Out"
	}
	v.ClockInEnabled = v.IsEmployee && !busy && !snap.ClockedIn
	v.ClockOutEnabled = v.IsEmployee && !busy && snap.ClockedIn

	v.Employees = append([]string(nil), snap.Employees...)
	v.Records = make([]RecordRow, 0, len(snap.Records))
	for _, rec := range FilterRecords(snap.Records, s.Search) {
		v.Records = append(v.Records, FormatRecord(ToClockRecord(rec), loc))
	}
	return v
}

// FilterRecords keeps records whose employee name contains search, ignoring case.
func FilterRecords(records []contract.Record, search string) []contract.Record {
	needle := strings.ToLower(search)
	out := make([]contract.Record, 0, len(records))
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.EmployeeName), needle) {
			out = append(out, rec)
		}
	}
	return out
}

// ToClockRecord converts a wire record.
func ToClockRecord(rec contract.Record) model.ClockRecord {
	return model.ClockRecord{
		ID:          rec.RecordID,
		Employee:    rec.EmployeeName,
		Employer:    rec.EmployerName,
		ClockInAt:   rec.ClockInAt,
		ClockOutAt:  rec.ClockOutAt,
		HoursWorked: rec.HoursWorked,
	}
}

// FormatRecord renders rec for display.
func FormatRecord(rec model.ClockRecord, loc *time.Location) RecordRow {
	in := rec.ClockInAt
	return RecordRow{
		ID:       rec.ID,
		Employee: rec.Employee,
		ClockIn:  FormatTimestamp(&in, loc),
		ClockOut: FormatTimestamp(rec.ClockOutAt, loc),
		Hours:    FormatHours(rec.HoursWorked),
	}
}

// FormatTimestamp renders t in loc using TimestampLayout, or "-" when t is unset.
func FormatTimestamp(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout)
}

// FormatHours renders hours as "8.50 hrs", or "-" when unset.
func FormatHours(hours *float64) string {
	if hours == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f hrs", *hours)
}
