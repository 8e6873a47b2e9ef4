package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheets.service/internal/api"
	"timesheets.service/internal/client"
	"timesheets.service/internal/core"
	"timesheets.service/internal/db"
	"timesheets.service/internal/ports/lock"
	"timesheets.service/internal/ports/messaging"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/security"
	"timesheets.service/pkg/database"
	"timesheets.service/pkg/metrics"
)

type nopPublisher struct{}

func (nopPublisher) PublishPayroll(context.Context, messaging.ClockOutEvent) error { return nil }
func (nopPublisher) PublishEmail(context.Context, messaging.EmailEvent) error     { return nil }

// testApp wires an App against a real API server backed by in-memory SQLite.
func testApp(t *testing.T) *App {
	t.Helper()
	conn, err := database.NewSQLiteConnection(":memory:", db.SQLiteSchema)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	repo := repository.NewSQLRepository(conn, repository.SQLite)
	m := metrics.New(prometheus.NewRegistry())
	auth := core.NewAuthService(repo, security.NewTokenProvider("secret", "test", time.Hour), security.NewHasher(4), 5)
	sheets := core.NewTimesheetService(repo, nopPublisher{}, lock.NewLocal(), m)

	srv := httptest.NewServer(api.NewRouter(api.Deps{Auth: auth, Timesheets: sheets, Metrics: m}))
	t.Cleanup(srv.Close)

	return &App{
		Client: client.New(srv.URL, &client.MemoryStore{}, client.WithHTTPClient(srv.Client())),
		Loc:    time.UTC,
	}
}

func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func registerUser(t *testing.T, app *App, username, role, employer string) {
	t.Helper()
	args := []string{"register",
		"--username", username,
		"--email", username + "@example.com",
		"--password", "pw-" + username,
		"--confirm", "pw-" + username,
		"--role", role,
	}
	if employer != "" {
		args = append(args, "--employer", employer)
	}
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Registered and signed in as "+username)
}

func TestAccountCommands(t *testing.T) {
	app := testApp(t)
	registerUser(t, app, "acme", "employer", "")

	out, err := executeCmd(t, app, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "acme <acme@example.com> (EMPLOYER)")

	out, err = executeCmd(t, app, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out.")

	_, err = executeCmd(t, app, "whoami")
	assert.ErrorIs(t, err, client.ErrMissingToken)

	out, err = executeCmd(t, app, "login", "-u", "acme@example.com", "-p", "pw-acme")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as acme.")

	_, err = executeCmd(t, app, "login", "-u", "acme", "-p", "wrong")
	assert.EqualError(t, err, "Invalid credentials")
}

func TestRegisterValidation(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "register", "-u", "a", "-e", "a@x.com", "-p", "one", "--confirm", "two")
	assert.EqualError(t, err, "Passwords do not match")

	_, err = executeCmd(t, app, "register", "-u", "a", "-e", "a@x.com", "-p", "pw", "--confirm", "pw", "-r", "manager")
	assert.EqualError(t, err, "Role must be EMPLOYER or EMPLOYEE")

	_, err = executeCmd(t, app, "register", "-u", "a", "-e", "a@x.com", "-p", "pw", "--confirm", "pw", "-r", "employee")
	assert.EqualError(t, err, "Employer is required for employee registration")

	_, err = executeCmd(t, app, "register", "-u", "a", "-e", "a@x.com", "-p", "pw", "--confirm", "pw", "--employer", "nobody")
	assert.EqualError(t, err, "Employer not found")
}

func TestEmployersCommand(t *testing.T) {
	app := testApp(t)
	registerUser(t, app, "acme", "EMPLOYER", "")
	registerUser(t, app, "globex", "EMPLOYER", "")

	out, err := executeCmd(t, app, "employers", "ac")
	require.NoError(t, err)
	assert.Contains(t, out, "acme")
	assert.NotContains(t, out, "globex")

	out, err = executeCmd(t, app, "employers", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No employers found.")

	_, err = executeCmd(t, app, "employers")
	assert.Error(t, err)
}

func TestClockCommands(t *testing.T) {
	app := testApp(t)
	registerUser(t, app, "acme", "EMPLOYER", "")
	registerUser(t, app, "bob", "EMPLOYEE", "acme")

	_, err := executeCmd(t, app, "clock-out")
	assert.EqualError(t, err, "No active clock-in record found")

	out, err := executeCmd(t, app, "clock-in")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Clocked in.")
	assert.Contains(t, out, "Currently Clocked In")
	assert.Contains(t, out, "Employer: acme")

	_, err = executeCmd(t, app, "clock-in")
	assert.EqualError(t, err, "Already clocked in")

	out, err = executeCmd(t, app, "clock-out")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Clocked out.")
	assert.Contains(t, out, "Currently Clocked Out")
	assert.Contains(t, out, "bob")

	out, err = executeCmd(t, app, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "My Clock Logs")
	assert.NotContains(t, out, "No records.")
}

func TestEmployerDashboard(t *testing.T) {
	app := testApp(t)
	registerUser(t, app, "acme", "EMPLOYER", "")
	registerUser(t, app, "bob", "EMPLOYEE", "acme")
	_, err := executeCmd(t, app, "clock-in")
	require.NoError(t, err)
	_, err = executeCmd(t, app, "clock-out")
	require.NoError(t, err)

	_, err = executeCmd(t, app, "login", "-u", "acme", "-p", "pw-acme")
	require.NoError(t, err)

	out, err := executeCmd(t, app, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Employee Clock Logs")
	assert.Contains(t, out, "Employees: bob")
	assert.NotContains(t, out, "No records.")

	out, err = executeCmd(t, app, "dashboard", "--search", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No records.")

	_, err = executeCmd(t, app, "clock-in")
	assert.EqualError(t, err, "Only employees can clock in/out")
}

func TestDashboardSignedOut(t *testing.T) {
	app := testApp(t)
	out, err := executeCmd(t, app, "dashboard")
	assert.ErrorIs(t, err, client.ErrMissingToken)
	assert.Contains(t, out, "Missing session token")
	assert.Contains(t, out, "Dashboard unavailable.")
}
