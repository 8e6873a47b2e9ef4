package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timesheets.service/internal/core/model"
)

// CreateEmployee adds name to the roster of employerID.
func (r *SQLRepository) CreateEmployee(ctx context.Context, name string, employerID int64) (int64, error) {
	query := `INSERT INTO employees (name, employer_id, is_active, created_at) VALUES (?, ?, ?, ?) RETURNING id`

	var id int64
	if err := r.queryRow(ctx, query, name, employerID, true, r.now().UTC()).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// ListActiveEmployees returns the active roster of employerID ordered by name.
func (r *SQLRepository) ListActiveEmployees(ctx context.Context, employerID int64) ([]model.Employee, error) {
	rows, err := r.query(ctx, `SELECT id, name, employer_id, is_active, created_at
              FROM employees
              WHERE employer_id = ? AND is_active = ?
              ORDER BY name ASC`, employerID, true)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// FindEmployee returns the newest roster entry called name under employerID.
func (r *SQLRepository) FindEmployee(ctx context.Context, name string, employerID int64) (*model.Employee, error) {
	row := r.queryRow(ctx, `SELECT id, name, employer_id, is_active, created_at
              FROM employees
              WHERE name = ? AND employer_id = ?
              ORDER BY id DESC
              LIMIT 1`, name, employerID)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return e, err
}

func scanEmployee(row rowScanner) (*model.Employee, error) {
	var (
		e         model.Employee
		createdAt dbTime
	)
	if err := row.Scan(&e.ID, &e.Name, &e.EmployerID, &e.IsActive, &createdAt); err != nil {
		return nil, err
	}
	e.CreatedAt = createdAt.Time
	return &e, nil
}

const recordSelect = `SELECT r.id, r.employee_id, emp.name, r.employer_id, boss.username,
       r.clock_in_time, r.clock_out_time, r.hours_worked, r.status,
       r.payroll_status, r.payroll_retry_count, r.email_status, r.email_retry_count
FROM timesheet_records r
JOIN employees emp ON emp.id = r.employee_id
JOIN users boss ON boss.id = r.employer_id`

func scanRecord(row rowScanner) (*model.TimesheetRecord, error) {
	var (
		rec      model.TimesheetRecord
		clockIn  dbTime
		clockOut dbTime
		hours    sql.NullFloat64
	)
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.EmployeeName, &rec.EmployerID, &rec.EmployerName,
		&clockIn, &clockOut, &hours, &rec.Status,
		&rec.PayrollStatus, &rec.PayrollRetryCount, &rec.EmailStatus, &rec.EmailRetryCount)
	if err != nil {
		return nil, err
	}
	rec.ClockInAt = clockIn.Time.UTC()
	if t := clockOut.ptr(); t != nil {
		utc := t.UTC()
		rec.ClockOutAt = &utc
	}
	rec.HoursWorked = nullableFloat(hours)
	return &rec, nil
}

func (r *SQLRepository) listRecords(ctx context.Context, where string, arg any) ([]model.TimesheetRecord, error) {
	rows, err := r.query(ctx, recordSelect+" WHERE "+where+" ORDER BY r.clock_in_time DESC, r.id DESC", arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.TimesheetRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// FindOpenRecord returns the open record of employeeID, or nil when the
// employee is clocked out.
func (r *SQLRepository) FindOpenRecord(ctx context.Context, employeeID int64) (*model.TimesheetRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))

	row := r.queryRow(ctx, recordSelect+` WHERE r.employee_id = ? AND r.status = ?
              ORDER BY r.clock_in_time DESC
              LIMIT 1`, employeeID, string(model.StatusClockedIn))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// CreateClockIn opens a record. ErrConflict means the employee already has one.
func (r *SQLRepository) CreateClockIn(ctx context.Context, employeeID, employerID int64, clockIn time.Time) (int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.employee_id", employeeID))

	query := `INSERT INTO timesheet_records
              (employee_id, employer_id, clock_in_time, status, payroll_status, payroll_retry_count, email_status, email_retry_count, created_at, updated_at)
              VALUES (?, ?, ?, ?, ?, 0, ?, 0, ?, ?) RETURNING id`

	now := r.now().UTC()
	var id int64
	err := r.queryRow(ctx, query, employeeID, employerID, clockIn.UTC(), string(model.StatusClockedIn),
		string(model.StatusJobPending), string(model.StatusJobPending), now, now).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CloseRecord stamps the clock-out of an open record. ErrNotFound means the
// record is missing or already closed.
func (r *SQLRepository) CloseRecord(ctx context.Context, id int64, clockOut time.Time, hoursWorked float64) error {
	query := `UPDATE timesheet_records
              SET clock_out_time = ?,
                  hours_worked = ?,
                  status = ?,
                  updated_at = ?
              WHERE id = ? AND status = ?`

	return r.execOne(ctx, query, clockOut.UTC(), hoursWorked, string(model.StatusClockedOut),
		r.now().UTC(), id, string(model.StatusClockedIn))
}

// GetRecord fetches a complete timesheet record by its ID.
func (r *SQLRepository) GetRecord(ctx context.Context, id int64) (*model.TimesheetRecord, error) {
	rec, err := scanRecord(r.queryRow(ctx, recordSelect+" WHERE r.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListRecordsByEmployee returns the records of one employee, newest first.
func (r *SQLRepository) ListRecordsByEmployee(ctx context.Context, employeeID int64) ([]model.TimesheetRecord, error) {
	return r.listRecords(ctx, "r.employee_id = ?", employeeID)
}

// ListRecordsByEmployer returns the records of every employee of employerID, newest first.
func (r *SQLRepository) ListRecordsByEmployer(ctx context.Context, employerID int64) ([]model.TimesheetRecord, error) {
	return r.listRecords(ctx, "r.employer_id = ?", employerID)
}

// UpdatePayrollStatus updates the status and retry count for a payroll job.
func (r *SQLRepository) UpdatePayrollStatus(ctx context.Context, id int64, status model.JobStatus, retryCount int) error {
	query := `UPDATE timesheet_records SET payroll_status = ?, payroll_retry_count = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, query, string(status), retryCount, r.now().UTC(), id)
}

// UpdateEmailStatus updates the status and retry count for an email job.
func (r *SQLRepository) UpdateEmailStatus(ctx context.Context, id int64, status model.JobStatus, retryCount int) error {
	query := `UPDATE timesheet_records SET email_status = ?, email_retry_count = ?, updated_at = ? WHERE id = ?`
	return r.execOne(ctx, query, string(status), retryCount, r.now().UTC(), id)
}
