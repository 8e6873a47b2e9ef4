package core

import (
	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
)

// ToContractUser maps an account to its API shape. EmployerName is only set
// for employees.
func ToContractUser(u *model.User) contract.User {
	out := contract.User{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}
	if out.Role == "" {
		out.Role = string(model.RoleEmployee)
	}
	if u.EmployerName != "" {
		name := u.EmployerName
		out.EmployerName = &name
	}
	return out
}

// ToContractRecord maps a stored record to its API shape.
func ToContractRecord(r model.TimesheetRecord) contract.Record {
	return contract.Record{
		RecordID:     r.ID,
		EmployeeName: r.EmployeeName,
		EmployerName: r.EmployerName,
		ClockInAt:    r.ClockInAt,
		ClockOutAt:   r.ClockOutAt,
		HoursWorked:  r.HoursWorked,
	}
}
