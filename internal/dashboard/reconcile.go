package dashboard

import (
	"timesheets.service/internal/contract"
)

// Reconcile replaces every server-derived field of local with snap. Nothing
// from the previous snapshot survives; only UI-owned fields are carried over.
func Reconcile(local State, snap contract.Dashboard) State {
	next := local.clone()
	fresh := copySnapshot(snap)
	next.Snapshot = &fresh
	return next
}

func copySnapshot(snap contract.Dashboard) contract.Dashboard {
	out := snap
	if snap.EmployerName != nil {
		name := *snap.EmployerName
		out.EmployerName = &name
	}
	if snap.AccumulatedHours != nil {
		hours := *snap.AccumulatedHours
		out.AccumulatedHours = &hours
	}
	out.Employees = append([]string(nil), snap.Employees...)
	out.Records = make([]contract.Record, len(snap.Records))
	for i, rec := range snap.Records {
		if rec.ClockOutAt != nil {
			t := *rec.ClockOutAt
			rec.ClockOutAt = &t
		}
		if rec.HoursWorked != nil {
			h := *rec.HoursWorked
			rec.HoursWorked = &h
		}
		out.Records[i] = rec
	}
	return out
}
