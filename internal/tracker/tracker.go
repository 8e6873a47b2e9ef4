// Package tracker keeps clock-in/clock-out state for a set of employees in
// process memory. It is the offline counterpart of the timesheet API: nothing
// is persisted and a Tracker lives exactly as long as its owner.
package tracker

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"timesheets.service/internal/core/model"
)

var (
	ErrNoEmployeeSelected = errors.New("please select an employee")
	ErrEmptyEmployeeName  = errors.New("employee name cannot be empty")
	ErrDuplicateEmployee  = errors.New("employee already exists")
)

// AlreadyClockedInError is returned when an employee with an open session
// tries to clock in again.
type AlreadyClockedInError struct {
	Employee string
}

func (e *AlreadyClockedInError) Error() string {
	return fmt.Sprintf("%s has already clocked in", e.Employee)
}

// NoActiveSessionError is returned when an employee without an open session
// tries to clock out.
type NoActiveSessionError struct {
	Employee string
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("%s has not clocked in", e.Employee)
}

// SummaryRow is the total for one employee.
type SummaryRow struct {
	Employee string
	Hours    float64
}

// Tracker is safe for concurrent use, although callers normally drive it
// from a single event loop.
type Tracker struct {
	mu        sync.Mutex
	now       func() time.Time
	employer  string
	employees []string
	known     map[string]struct{}
	active    map[string]time.Time
	records   []model.ClockRecord
	summary   map[string]float64
	order     []string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithEmployer stamps every record with the given employer name.
func WithEmployer(name string) Option {
	return func(t *Tracker) { t.employer = name }
}

// New returns an empty tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		now:     time.Now,
		known:   make(map[string]struct{}),
		active:  make(map[string]time.Time),
		summary: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddEmployee registers a new employee name.
func (t *Tracker) AddEmployee(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyEmployeeName
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.known[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEmployee, name)
	}
	t.known[name] = struct{}{}
	t.employees = append(t.employees, name)
	return nil
}

// Employees returns the registered names in the order they were added.
func (t *Tracker) Employees() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.employees...)
}

// IsClockedIn reports whether employee has an open session.
func (t *Tracker) IsClockedIn(employee string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.active[employee]
	return ok
}

// ClockIn opens a session for employee.
func (t *Tracker) ClockIn(employee string) error {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return ErrNoEmployeeSelected
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[employee]; ok {
		return &AlreadyClockedInError{Employee: employee}
	}
	t.active[employee] = t.now()
	return nil
}

// ClockOut closes the open session of employee and returns the resulting record.
func (t *Tracker) ClockOut(employee string) (model.ClockRecord, error) {
	employee = strings.TrimSpace(employee)
	if employee == "" {
		return model.ClockRecord{}, ErrNoEmployeeSelected
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	clockIn, ok := t.active[employee]
	if !ok {
		return model.ClockRecord{}, &NoActiveSessionError{Employee: employee}
	}

	clockOut := t.now()
	hours := model.HoursBetween(clockIn, clockOut)
	rec := model.ClockRecord{
		ID:          int64(len(t.records) + 1),
		Employee:    employee,
		Employer:    t.employer,
		ClockInAt:   clockIn,
		ClockOutAt:  &clockOut,
		HoursWorked: &hours,
	}

	t.records = append(t.records, rec)
	if _, seen := t.summary[employee]; !seen {
		t.order = append(t.order, employee)
	}
	t.summary[employee] = model.SumHours(t.summary[employee], hours)
	delete(t.active, employee)

	return copyRecord(rec), nil
}

// ListRecords returns closed records whose employee name contains filter,
// ignoring case, oldest clock-out first. An empty filter matches everything.
func (t *Tracker) ListRecords(filter string) []model.ClockRecord {
	needle := strings.ToLower(filter)

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]model.ClockRecord, 0, len(t.records))
	for _, rec := range t.records {
		if needle == "" || strings.Contains(strings.ToLower(rec.Employee), needle) {
			out = append(out, copyRecord(rec))
		}
	}
	return out
}

// copyRecord detaches the pointer fields so callers cannot rewrite stored records.
func copyRecord(rec model.ClockRecord) model.ClockRecord {
	if rec.ClockOutAt != nil {
		out := *rec.ClockOutAt
		rec.ClockOutAt = &out
	}
	if rec.HoursWorked != nil {
		hours := *rec.HoursWorked
		rec.HoursWorked = &hours
	}
	return rec
}

// Summary returns total hours per employee over all closed records.
func (t *Tracker) Summary() map[string]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]float64, len(t.summary))
	for k, v := range t.summary {
		out[k] = v
	}
	return out
}

// SummaryRows returns the summary ordered by each employee's first clock-out.
func (t *Tracker) SummaryRows() []SummaryRow {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := make([]SummaryRow, 0, len(t.order))
	for _, name := range t.order {
		rows = append(rows, SummaryRow{Employee: name, Hours: t.summary[name]})
	}
	return rows
}
