package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheets.service/internal/contract"
)

func TestRegister_EmployerAndEmployee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	boss := f.register(t, "Acme", "employer", "")
	assert.NotEmpty(t, boss.Token)
	assert.Equal(t, "EMPLOYER", boss.User.Role)
	assert.Nil(t, boss.User.EmployerName)
	assert.Equal(t, "acme@example.com", boss.User.Email)

	// Employer lookup ignores case.
	alice := f.register(t, "alice", "EMPLOYEE", "acme")
	assert.Equal(t, "EMPLOYEE", alice.User.Role)
	require.NotNil(t, alice.User.EmployerName)
	assert.Equal(t, "Acme", *alice.User.EmployerName)

	roster, err := f.repo.ListActiveEmployees(ctx, boss.User.UserID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, "alice", roster[0].Name)
}

func TestRegister_Rejects(t *testing.T) {
	f := newFixture(t)
	f.register(t, "acme", "EMPLOYER", "")
	f.register(t, "alice", "EMPLOYEE", "acme")
	missing := "nobody"
	alice := "alice"

	cases := map[string]struct {
		req  contract.RegisterRequest
		want error
	}{
		"missing fields":    {contract.RegisterRequest{Username: "bob", Password: "x", Role: "EMPLOYER"}, ErrMissingFields},
		"duplicate user":    {contract.RegisterRequest{Username: "acme", Email: "x@example.com", Password: "x", Role: "EMPLOYER"}, ErrUserExists},
		"duplicate email":   {contract.RegisterRequest{Username: "bob", Email: "ACME@example.com", Password: "x", Role: "EMPLOYER"}, ErrEmailExists},
		"bad role":          {contract.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "x", Role: "ADMIN"}, ErrInvalidRole},
		"no employer":       {contract.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "x", Role: "EMPLOYEE"}, ErrEmployerRequired},
		"unknown employer":  {contract.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "x", Role: "EMPLOYEE", EmployerUsername: &missing}, ErrEmployerNotFound},
		"employee employer": {contract.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "x", Role: "EMPLOYEE", EmployerUsername: &alice}, ErrEmployerNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "acme", "EMPLOYER", "")
	ctx := context.Background()

	byName, err := f.auth.Login(ctx, contract.LoginRequest{Username: "acme", Password: "password-acme"})
	require.NoError(t, err)
	assert.Equal(t, "acme", byName.User.Username)

	byEmail, err := f.auth.Login(ctx, contract.LoginRequest{Username: "acme@example.com", Password: "password-acme"})
	require.NoError(t, err)
	assert.NotEqual(t, byName.Token, byEmail.Token)

	// A new login revokes the previous session.
	_, err = f.auth.Authenticate(ctx, byName.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	user, err := f.auth.Authenticate(ctx, byEmail.Token)
	require.NoError(t, err)
	assert.Equal(t, "acme", user.Username)
	require.NotNil(t, user.LastLogin)
}

func TestLogin_Lockout(t *testing.T) {
	f := newFixture(t)
	f.register(t, "acme", "EMPLOYER", "")
	ctx := context.Background()
	wrong := contract.LoginRequest{Username: "acme", Password: "nope"}

	for i := 0; i < 4; i++ {
		_, err := f.auth.Login(ctx, wrong)
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}
	_, err := f.auth.Login(ctx, wrong)
	require.ErrorIs(t, err, ErrAccountLocked)

	_, err = f.auth.Login(ctx, contract.LoginRequest{Username: "acme", Password: "password-acme"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	f := newFixture(t)
	f.register(t, "acme", "EMPLOYER", "")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = f.auth.Login(ctx, contract.LoginRequest{Username: "acme", Password: "nope"})
	}
	_, err := f.auth.Login(ctx, contract.LoginRequest{Username: "acme", Password: "password-acme"})
	require.NoError(t, err)

	u, err := f.repo.FindUserByLogin(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, 0, u.FailedAttempts)
	assert.True(t, u.IsActive)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.auth.Login(context.Background(), contract.LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(context.Background(), contract.LoginRequest{Username: "  ", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	resp := f.register(t, "acme", "EMPLOYER", "")
	ctx := context.Background()

	me, err := f.auth.CurrentUser(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User, me)

	require.NoError(t, f.auth.Logout(ctx, resp.Token))
	_, err = f.auth.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, f.auth.Logout(ctx, "unknown"))
	_, err = f.auth.Authenticate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSearchEmployers(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Acme", "EMPLOYER", "")
	f.register(t, "acorn", "EMPLOYER", "")
	f.register(t, "zeta", "EMPLOYER", "")
	f.register(t, "ace", "EMPLOYEE", "acme")

	got, err := f.auth.SearchEmployers(context.Background(), "AC")
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, u := range got {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"Acme", "acorn"}, names)
}
