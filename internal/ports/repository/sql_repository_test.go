package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheets.service/internal/core/model"
	"timesheets.service/internal/db"
	"timesheets.service/pkg/database"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()
	conn, err := database.NewSQLiteConnection(":memory:", db.SQLiteSchema)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLRepository(conn, SQLite)
}

func seedEmployer(t *testing.T, r *SQLRepository, name string) int64 {
	t.Helper()
	id, err := r.CreateUser(context.Background(), &model.User{
		Username: name, Email: name + "@example.com", PasswordHash: "x", Role: model.RoleEmployer,
	})
	require.NoError(t, err)
	return id
}

func TestRebind(t *testing.T) {
	pg := &SQLRepository{dialect: Postgres}
	lite := &SQLRepository{dialect: SQLite}
	q := "SELECT * FROM t WHERE a = ? AND b = ? LIMIT ?"

	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2 LIMIT $3", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)
	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)
	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestDBTime_Scan(t *testing.T) {
	want := time.Date(2025, 6, 2, 9, 30, 15, 0, time.UTC)
	for _, in := range []any{want, "2025-06-02 09:30:15+00:00", []byte("2025-06-02T09:30:15Z"), "2025-06-02 09:30:15"} {
		var ts dbTime
		require.NoError(t, ts.Scan(in), "%v", in)
		assert.True(t, ts.Valid)
		assert.True(t, want.Equal(ts.Time), "%v", in)
	}

	var ts dbTime
	require.NoError(t, ts.Scan(nil))
	assert.False(t, ts.Valid)
	assert.Nil(t, ts.ptr())
	assert.Error(t, ts.Scan(42))
	assert.Error(t, ts.Scan("yesterday"))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	bossID := seedEmployer(t, r, "Acme")
	empID, err := r.CreateUser(ctx, &model.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: model.RoleEmployee, EmployerID: &bossID,
	})
	require.NoError(t, err)

	u, err := r.GetUser(ctx, empID)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, model.RoleEmployee, u.Role)
	require.NotNil(t, u.EmployerID)
	assert.Equal(t, bossID, *u.EmployerID)
	assert.Equal(t, "Acme", u.EmployerName)
	assert.True(t, u.IsActive)
	assert.Nil(t, u.LastLogin)

	_, err = r.CreateUser(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "x", Role: model.RoleEmployee})
	assert.ErrorIs(t, err, ErrConflict)

	byEmail, err := r.FindUserByLogin(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, empID, byEmail.ID)
	byName, err := r.FindUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, empID, byName.ID)
	_, err = r.FindUserByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	fold, err := r.FindUserByUsernameFold(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, bossID, fold.ID)

	ok, err := r.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = r.EmailExists(ctx, "missing@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	login := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateLoginState(ctx, empID, 3, false, nil))
	require.NoError(t, r.UpdateLoginState(ctx, empID, 0, true, &login))
	u, err = r.GetUser(ctx, empID)
	require.NoError(t, err)
	assert.Zero(t, u.FailedAttempts)
	require.NotNil(t, u.LastLogin)
	assert.True(t, login.Equal(*u.LastLogin))

	assert.ErrorIs(t, r.UpdateLoginState(ctx, 999, 0, true, nil), ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	for _, name := range []string{"zeta_works", "Acme", "acme-east", "Globex", "100%club"} {
		seedEmployer(t, r, name)
	}
	_, err := r.CreateUser(ctx, &model.User{Username: "acme-worker", Email: "w@example.com", PasswordHash: "x", Role: model.RoleEmployee})
	require.NoError(t, err)

	found, err := r.SearchUsers(ctx, model.RoleEmployer, "ACME", 10)
	require.NoError(t, err)
	var names []string
	for _, u := range found {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"Acme", "acme-east"}, names)

	found, err = r.SearchUsers(ctx, model.RoleEmployer, "%", 10)
	require.NoError(t, err)
	require.Len(t, found, 1, "wildcards are matched literally")
	assert.Equal(t, "100%club", found[0].Username)

	found, err = r.SearchUsers(ctx, model.RoleEmployer, "", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestEmployees(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	bossID := seedEmployer(t, r, "acme")
	otherID := seedEmployer(t, r, "globex")

	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := r.CreateEmployee(ctx, name, bossID)
		require.NoError(t, err)
	}
	_, err := r.CreateEmployee(ctx, "dave", otherID)
	require.NoError(t, err)
	second, err := r.CreateEmployee(ctx, "alice", bossID)
	require.NoError(t, err)

	roster, err := r.ListActiveEmployees(ctx, bossID)
	require.NoError(t, err)
	var names []string
	for _, e := range roster {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alice", "alice", "bob", "carol"}, names)

	e, err := r.FindEmployee(ctx, "alice", bossID)
	require.NoError(t, err)
	assert.Equal(t, second, e.ID, "newest entry wins")

	_, err = r.FindEmployee(ctx, "dave", bossID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimesheetRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	bossID := seedEmployer(t, r, "acme")
	aliceID, err := r.CreateEmployee(ctx, "alice", bossID)
	require.NoError(t, err)
	bobID, err := r.CreateEmployee(ctx, "bob", bossID)
	require.NoError(t, err)

	open, err := r.FindOpenRecord(ctx, aliceID)
	require.NoError(t, err)
	assert.Nil(t, open)

	in := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	recID, err := r.CreateClockIn(ctx, aliceID, bossID, in)
	require.NoError(t, err)

	_, err = r.CreateClockIn(ctx, aliceID, bossID, in.Add(time.Minute))
	assert.ErrorIs(t, err, ErrConflict, "one open record per employee")

	open, err = r.FindOpenRecord(ctx, aliceID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, recID, open.ID)
	assert.Equal(t, "alice", open.EmployeeName)
	assert.Equal(t, "acme", open.EmployerName)
	assert.True(t, in.Equal(open.ClockInAt))
	assert.Nil(t, open.ClockOutAt)
	assert.Nil(t, open.HoursWorked)
	assert.Equal(t, model.StatusClockedIn, open.Status)
	assert.Equal(t, model.StatusJobPending, open.PayrollStatus)

	out := in.Add(8*time.Hour + 30*time.Minute)
	require.NoError(t, r.CloseRecord(ctx, recID, out, 8.5))
	assert.ErrorIs(t, r.CloseRecord(ctx, recID, out, 8.5), ErrNotFound, "already closed")

	rec, err := r.GetRecord(ctx, recID)
	require.NoError(t, err)
	require.NotNil(t, rec.ClockOutAt)
	assert.True(t, out.Equal(*rec.ClockOutAt))
	require.NotNil(t, rec.HoursWorked)
	assert.Equal(t, 8.5, *rec.HoursWorked)
	assert.Equal(t, model.StatusClockedOut, rec.Status)

	_, err = r.CreateClockIn(ctx, aliceID, bossID, out.Add(time.Hour))
	require.NoError(t, err, "a new session may open after clock-out")
	_, err = r.CreateClockIn(ctx, bobID, bossID, in.Add(30*time.Minute))
	require.NoError(t, err)

	mine, err := r.ListRecordsByEmployee(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.True(t, mine[0].ClockInAt.After(mine[1].ClockInAt), "newest first")

	all, err := r.ListRecordsByEmployer(ctx, bossID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"alice", "bob", "alice"}, []string{all[0].EmployeeName, all[1].EmployeeName, all[2].EmployeeName})

	none, err := r.ListRecordsByEmployee(ctx, 999)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = r.GetRecord(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobStatus(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	bossID := seedEmployer(t, r, "acme")
	empID, err := r.CreateEmployee(ctx, "alice", bossID)
	require.NoError(t, err)
	recID, err := r.CreateClockIn(ctx, empID, bossID, time.Now())
	require.NoError(t, err)

	require.NoError(t, r.UpdatePayrollStatus(ctx, recID, model.StatusJobFailed, 2))
	require.NoError(t, r.UpdateEmailStatus(ctx, recID, model.StatusJobCompleted, 0))

	rec, err := r.GetRecord(ctx, recID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusJobFailed, rec.PayrollStatus)
	assert.Equal(t, 2, rec.PayrollRetryCount)
	assert.Equal(t, model.StatusJobCompleted, rec.EmailStatus)

	assert.ErrorIs(t, r.UpdateEmailStatus(ctx, 999, model.StatusJobCompleted, 0), ErrNotFound)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	userID := seedEmployer(t, r, "acme")
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.CreateSession(ctx, &model.UserSession{ID: "s1", UserID: userID, Token: "t1", ExpiresAt: exp, IsActive: true}))
	require.NoError(t, r.CreateSession(ctx, &model.UserSession{ID: "s2", UserID: userID, Token: "t2", ExpiresAt: exp, IsActive: true}))
	assert.ErrorIs(t, r.CreateSession(ctx, &model.UserSession{ID: "s3", UserID: userID, Token: "t1", ExpiresAt: exp}), ErrConflict)

	s, err := r.FindSessionByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.True(t, s.IsActive)
	assert.True(t, exp.Equal(s.ExpiresAt))

	require.NoError(t, r.DeactivateSession(ctx, "t1"))
	s, err = r.FindSessionByToken(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	require.NoError(t, r.DeactivateUserSessions(ctx, userID))
	s, err = r.FindSessionByToken(ctx, "t2")
	require.NoError(t, err)
	assert.False(t, s.IsActive)

	require.NoError(t, r.DeactivateSession(ctx, "unknown"))
	_, err = r.FindSessionByToken(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}
