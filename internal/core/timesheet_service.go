package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
	"timesheets.service/internal/ports/lock"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/pkg/metrics"
)

const (
	actionClockIn  = "clock_in"
	actionClockOut = "clock_out"
)

// TimesheetRepository is the storage TimesheetService needs.
type TimesheetRepository interface {
	repository.UserRepository
	repository.EmployeeRepository
	repository.TimesheetRepository
}

// TimesheetService builds dashboards and opens and closes work sessions.
// Clock actions of one user are serialized through the Locker so a double
// submission cannot race past the open-session check.
type TimesheetService struct {
	repo      TimesheetRepository
	publisher messaging.Publisher
	locker    lock.Locker
	lockTTL   time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

// TimesheetOption configures a TimesheetService.
type TimesheetOption func(*TimesheetService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TimesheetOption {
	return func(s *TimesheetService) { s.now = now }
}

// WithLockTTL bounds how long one clock action may hold the per-user lock.
func WithLockTTL(ttl time.Duration) TimesheetOption {
	return func(s *TimesheetService) { s.lockTTL = ttl }
}

// NewTimesheetService creates a new instance of our main application service,
// wiring up the database repository and the message queue producer.
func NewTimesheetService(repo TimesheetRepository, publisher messaging.Publisher, locker lock.Locker, m *metrics.Metrics, opts ...TimesheetOption) *TimesheetService {
	s := &TimesheetService{
		repo:      repo,
		publisher: publisher,
		locker:    locker,
		lockTTL:   10 * time.Second,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dashboard returns the snapshot a client renders. Employers get their roster
// and every record of their employees; employees get their own records, the
// sum of their closed hours and whether a session is open.
func (s *TimesheetService) Dashboard(ctx context.Context, userID int64) (contract.Dashboard, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return contract.Dashboard{}, err
	}

	if user.Role == model.RoleEmployer {
		return s.employerDashboard(ctx, user)
	}

	employee, err := s.employeeFor(ctx, user)
	if err != nil {
		return contract.Dashboard{}, err
	}
	records, err := s.repo.ListRecordsByEmployee(ctx, employee.ID)
	if err != nil {
		return contract.Dashboard{}, fmt.Errorf("listing records: %w", err)
	}

	var closed []float64
	clockedIn := false
	out := make([]contract.Record, 0, len(records))
	for _, rec := range records {
		if rec.HoursWorked != nil {
			closed = append(closed, *rec.HoursWorked)
		}
		if rec.Status == model.StatusClockedIn {
			clockedIn = true
		}
		out = append(out, ToContractRecord(rec))
	}
	total := model.SumHours(closed...)
	employerName := user.EmployerName

	return contract.Dashboard{
		Role:             string(user.Role),
		EmployerName:     &employerName,
		AccumulatedHours: &total,
		ClockedIn:        clockedIn,
		Employees:        []string{},
		Records:          out,
	}, nil
}

func (s *TimesheetService) employerDashboard(ctx context.Context, user *model.User) (contract.Dashboard, error) {
	roster, err := s.repo.ListActiveEmployees(ctx, user.ID)
	if err != nil {
		return contract.Dashboard{}, fmt.Errorf("listing employees: %w", err)
	}
	records, err := s.repo.ListRecordsByEmployer(ctx, user.ID)
	if err != nil {
		return contract.Dashboard{}, fmt.Errorf("listing records: %w", err)
	}

	names := make([]string, 0, len(roster))
	for _, e := range roster {
		names = append(names, e.Name)
	}
	out := make([]contract.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, ToContractRecord(rec))
	}
	zero := 0.0

	return contract.Dashboard{
		Role:             string(user.Role),
		AccumulatedHours: &zero,
		ClockedIn:        false,
		Employees:        names,
		Records:          out,
	}, nil
}

// ClockIn opens a work session for an employee.
func (s *TimesheetService) ClockIn(ctx context.Context, userID int64) (err error) {
	defer func() { s.observe(actionClockIn, err) }()

	user, employee, release, err := s.beginClockAction(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	open, err := s.repo.FindOpenRecord(ctx, employee.ID)
	if err != nil {
		return fmt.Errorf("failed to query open record: %w", err)
	}
	if open != nil {
		return ErrAlreadyClockedIn
	}

	id, err := s.repo.CreateClockIn(ctx, employee.ID, *user.EmployerID, s.now().UTC())
	if errors.Is(err, repository.ErrConflict) {
		return ErrAlreadyClockedIn
	}
	if err != nil {
		return fmt.Errorf("failed to create clock-in record: %w", err)
	}

	log.Ctx(ctx).Info().Int64("record_id", id).Str("employee", employee.Name).Msg("Clocked in")
	return nil
}

// ClockOut closes the open session of an employee and triggers the payroll
// and summary email jobs.
func (s *TimesheetService) ClockOut(ctx context.Context, userID int64) (err error) {
	defer func() { s.observe(actionClockOut, err) }()

	user, employee, release, err := s.beginClockAction(ctx, userID)
	if err != nil {
		return err
	}
	defer release()

	open, err := s.repo.FindOpenRecord(ctx, employee.ID)
	if err != nil {
		return fmt.Errorf("failed to query open record: %w", err)
	}
	if open == nil {
		return ErrNoActiveSession
	}

	clockOut := s.now().UTC()
	hours := model.HoursBetween(open.ClockInAt, clockOut)

	err = s.repo.CloseRecord(ctx, open.ID, clockOut, hours)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoActiveSession
	}
	if err != nil {
		return fmt.Errorf("failed to update clock-out record: %w", err)
	}
	s.metrics.ObserveShift(hours)
	log.Ctx(ctx).Info().Int64("record_id", open.ID).Float64("hours_worked", hours).Msg("Clocked out")

	// The record is closed at this point; a publishing failure leaves its
	// job status PENDING instead of failing the request.
	emailEvent := messaging.EmailEvent{
		RecordID:     open.ID,
		EmployeeName: employee.Name,
		Email:        user.Email,
		HoursWorked:  hours,
		OccurredAt:   clockOut,
	}
	if err := s.publisher.PublishEmail(ctx, emailEvent); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("record_id", open.ID).Msg("Failed to publish email event")
	}

	payrollEvent := messaging.ClockOutEvent{
		RecordID:     open.ID,
		EmployeeID:   employee.ID,
		EmployeeName: employee.Name,
		EmployerName: open.EmployerName,
		HoursWorked:  hours,
		ClockInTime:  open.ClockInAt,
		ClockOutTime: clockOut,
	}
	if err := s.publisher.PublishPayroll(ctx, payrollEvent); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("record_id", open.ID).Msg("Failed to publish payroll event")
	}
	return nil
}

// beginClockAction loads the employee behind userID and takes the per-user lock.
func (s *TimesheetService) beginClockAction(ctx context.Context, userID int64) (*model.User, *model.Employee, func(), error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64("app.user_id", userID))

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, nil, nil, err
	}
	if user.Role != model.RoleEmployee {
		return nil, nil, nil, ErrNotEmployee
	}
	employee, err := s.employeeFor(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}

	release, err := s.locker.Acquire(ctx, "clock:"+strconv.FormatInt(userID, 10), s.lockTTL)
	if errors.Is(err, lock.ErrLocked) {
		return nil, nil, nil, ErrClockActionInFlight
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to lock clock action: %w", err)
	}

	return user, employee, func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Failed to release clock lock")
		}
	}, nil
}

func (s *TimesheetService) getUser(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

func (s *TimesheetService) employeeFor(ctx context.Context, user *model.User) (*model.Employee, error) {
	if user.EmployerID == nil {
		return nil, ErrMissingEmployer
	}
	employee, err := s.repo.FindEmployee(ctx, user.Username, *user.EmployerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading employee: %w", err)
	}
	return employee, nil
}

func (s *TimesheetService) observe(action string, err error) {
	switch {
	case err == nil:
		s.metrics.ObserveClock(action, metrics.OutcomeOK)
	case isRejection(err):
		s.metrics.ObserveClock(action, metrics.OutcomeRejected)
	default:
		s.metrics.ObserveClock(action, metrics.OutcomeError)
	}
}

func isRejection(err error) bool {
	for _, target := range []error{
		ErrAlreadyClockedIn, ErrNoActiveSession, ErrNotEmployee, ErrMissingEmployer,
		ErrEmployeeNotFound, ErrUserNotFound, ErrClockActionInFlight,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
