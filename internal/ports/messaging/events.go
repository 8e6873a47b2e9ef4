package messaging

import "time"

// Event types set as the EventType message attribute.
const (
	EventTypeClockOut = "CLOCK_OUT"
	EventTypeEmail    = "SHIFT_SUMMARY_EMAIL"
)

// ClockOutEvent is the JSON payload sent via SQS for the payroll queue.
type ClockOutEvent struct {
	RecordID     int64     `json:"recordId"`
	EmployeeID   int64     `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	EmployerName string    `json:"employerName"`
	HoursWorked  float64   `json:"hoursWorked"`
	ClockInTime  time.Time `json:"clockInTime"`
	ClockOutTime time.Time `json:"clockOutTime"`
}

// EmailEvent is the JSON payload sent via SQS for the email queue.
type EmailEvent struct {
	RecordID     int64     `json:"recordId"`
	EmployeeName string    `json:"employeeName"`
	Email        string    `json:"email"`
	HoursWorked  float64   `json:"hoursWorked"`
	OccurredAt   time.Time `json:"occurredAt"`
}
