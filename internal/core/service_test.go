package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/db"
	"timesheets.service/internal/ports/lock"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/security"
	"timesheets.service/pkg/database"
	"timesheets.service/pkg/metrics"
)

type fakePublisher struct {
	mu      sync.Mutex
	payroll []messaging.ClockOutEvent
	email   []messaging.EmailEvent
	err     error
}

func (f *fakePublisher) PublishPayroll(_ context.Context, e messaging.ClockOutEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payroll = append(f.payroll, e)
	return f.err
}

func (f *fakePublisher) PublishEmail(_ context.Context, e messaging.EmailEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = append(f.email, e)
	return f.err
}

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return nil, lock.ErrLocked
}

type brokenLocker struct{}

func (brokenLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return nil, errors.New("redis: connection refused")
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fixture struct {
	repo      *repository.SQLRepository
	auth      *AuthService
	sheets    *TimesheetService
	publisher *fakePublisher
	clock     *clock
	registry  *prometheus.Registry
}

func newFixture(t *testing.T, opts ...TimesheetOption) *fixture {
	t.Helper()
	conn, err := database.NewSQLiteConnection(":memory:", db.SQLiteSchema)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := repository.NewSQLRepository(conn, repository.SQLite)
	tokens := security.NewTokenProvider("test-secret", "timesheets.test", time.Hour)
	reg := prometheus.NewRegistry()
	f := &fixture{
		repo:      repo,
		auth:      NewAuthService(repo, tokens, security.NewHasher(4), 5),
		publisher: &fakePublisher{},
		clock:     &clock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)},
		registry:  reg,
	}
	opts = append([]TimesheetOption{WithClock(f.clock.Now)}, opts...)
	f.sheets = NewTimesheetService(repo, f.publisher, lock.NewLocal(), metrics.New(reg), opts...)
	return f
}

func (f *fixture) register(t *testing.T, username, role string, employer string) contract.AuthResponse {
	t.Helper()
	req := contract.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "password-" + username,
		Role:     role,
	}
	if employer != "" {
		req.EmployerUsername = &employer
	}
	resp, err := f.auth.Register(context.Background(), req)
	require.NoError(t, err)
	return resp
}
