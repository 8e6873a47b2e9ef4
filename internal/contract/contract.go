// Package contract holds the JSON bodies exchanged between the timesheet API
// and its clients.
package contract

import "time"

// User mirrors the account fields the API exposes.
type User struct {
	UserID       int64   `json:"userId"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role,omitempty"`
	EmployerName *string `json:"employerName"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	Role             string  `json:"role"`
	EmployerUsername *string `json:"employerUsername,omitempty"`
}

// Record is one timesheet row. ClockOutAt and HoursWorked are null while the
// employee is still clocked in.
type Record struct {
	RecordID     int64      `json:"recordId"`
	EmployeeName string     `json:"employeeName"`
	EmployerName string     `json:"employerName"`
	ClockInAt    time.Time  `json:"clockInAt"`
	ClockOutAt   *time.Time `json:"clockOutAt"`
	HoursWorked  *float64   `json:"hoursWorked"`
}

// Dashboard is the server snapshot a client renders from.
type Dashboard struct {
	Role             string   `json:"role"`
	EmployerName     *string  `json:"employerName"`
	AccumulatedHours *float64 `json:"accumulatedHours"`
	ClockedIn        bool     `json:"clockedIn"`
	Employees        []string `json:"employees"`
	Records          []Record `json:"records"`
}

// ErrorResponse is the error body. Older endpoints fill Message instead of Error.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns the first non-empty message in the body.
func (e ErrorResponse) Text() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}
