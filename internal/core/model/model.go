package model

import (
	"strings"
	"time"
)

// JobStatus defines the state of the asynchronous payroll/email processing of a record.
type JobStatus string

const (
	StatusJobPending    JobStatus = "PENDING"
	StatusJobProcessing JobStatus = "PROCESSING"
	StatusJobCompleted  JobStatus = "COMPLETED"
	StatusJobFailed     JobStatus = "FAILED"
)

// Role is the account type of a user.
type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleEmployer Role = "EMPLOYER"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleEmployee, RoleEmployer:
		return r, true
	}
	return "", false
}

// RecordStatus is the lifecycle state of a timesheet record.
type RecordStatus string

const (
	StatusClockedIn  RecordStatus = "clocked_in"
	StatusClockedOut RecordStatus = "clocked_out"
)

// User is a registered account. Employees point at the employer that owns them.
type User struct {
	ID             int64      `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	EmployerID     *int64     `json:"employerId,omitempty"`
	EmployerName   string     `json:"employerName,omitempty"`
	IsActive       bool       `json:"isActive"`
	FailedAttempts int        `json:"failedAttempts"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Employee is the roster entry an employer sees for each linked employee account.
type Employee struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	EmployerID int64     `json:"employerId"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TimesheetRecord is one work interval persisted by the server.
type TimesheetRecord struct {
	ID                int64        `json:"id"`
	EmployeeID        int64        `json:"employeeId"`
	EmployeeName      string       `json:"employeeName"`
	EmployerID        int64        `json:"employerId"`
	EmployerName      string       `json:"employerName"`
	ClockInAt         time.Time    `json:"clockInAt"`
	ClockOutAt        *time.Time   `json:"clockOutAt,omitempty"`
	HoursWorked       *float64     `json:"hoursWorked,omitempty"`
	Status            RecordStatus `json:"status"`
	PayrollStatus     JobStatus    `json:"payrollStatus"`
	PayrollRetryCount int          `json:"payrollRetryCount"`
	EmailStatus       JobStatus    `json:"emailStatus"`
	EmailRetryCount   int          `json:"emailRetryCount"`
}

// UserSession tracks an issued bearer token so it can be revoked on logout.
type UserSession struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
