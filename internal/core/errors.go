package core

import "errors"

// Messages match what clients display verbatim.
var (
	ErrMissingFields      = errors.New("Username, email and password are required")
	ErrUserExists         = errors.New("User already exists")
	ErrEmailExists        = errors.New("Email already exists")
	ErrInvalidRole        = errors.New("Invalid role")
	ErrEmployerRequired   = errors.New("Employer is required for employee registration")
	ErrEmployerNotFound   = errors.New("Employer not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountDisabled    = errors.New("Account is disabled")
	ErrAccountLocked      = errors.New("Account locked")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrUserNotFound       = errors.New("User not found")

	ErrNotEmployee         = errors.New("Only employees can clock in/out")
	ErrMissingEmployer     = errors.New("Employee account is missing employer assignment")
	ErrEmployeeNotFound    = errors.New("Employee record not found")
	ErrAlreadyClockedIn    = errors.New("Already clocked in")
	ErrNoActiveSession     = errors.New("No active clock-in record found")
	ErrClockActionInFlight = errors.New("Another clock action is in progress")
)
