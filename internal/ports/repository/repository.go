package repository

import (
	"context"
	"errors"
	"time"

	"timesheets.service/internal/core/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflicting record exists")
)

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	FindUserByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error)
	FindUserByUsernameFold(ctx context.Context, username string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SearchUsers(ctx context.Context, role model.Role, query string, limit int) ([]model.User, error)
	UpdateLoginState(ctx context.Context, id int64, failedAttempts int, isActive bool, lastLogin *time.Time) error
}

// EmployeeRepository stores the employer-owned roster.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, name string, employerID int64) (int64, error)
	ListActiveEmployees(ctx context.Context, employerID int64) ([]model.Employee, error)
	FindEmployee(ctx context.Context, name string, employerID int64) (*model.Employee, error)
}

// TimesheetRepository stores work intervals and the status of their async jobs.
type TimesheetRepository interface {
	FindOpenRecord(ctx context.Context, employeeID int64) (*model.TimesheetRecord, error)
	CreateClockIn(ctx context.Context, employeeID, employerID int64, clockIn time.Time) (int64, error)
	CloseRecord(ctx context.Context, id int64, clockOut time.Time, hoursWorked float64) error
	GetRecord(ctx context.Context, id int64) (*model.TimesheetRecord, error)
	ListRecordsByEmployee(ctx context.Context, employeeID int64) ([]model.TimesheetRecord, error)
	ListRecordsByEmployer(ctx context.Context, employerID int64) ([]model.TimesheetRecord, error)
	UpdatePayrollStatus(ctx context.Context, id int64, status model.JobStatus, retryCount int) error
	UpdateEmailStatus(ctx context.Context, id int64, status model.JobStatus, retryCount int) error
}

// SessionRepository stores issued bearer tokens.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *model.UserSession) error
	FindSessionByToken(ctx context.Context, token string) (*model.UserSession, error)
	DeactivateSession(ctx context.Context, token string) error
	DeactivateUserSessions(ctx context.Context, userID int64) error
}

// Repository contract
type Repository interface {
	UserRepository
	EmployeeRepository
	TimesheetRepository
	SessionRepository
}
