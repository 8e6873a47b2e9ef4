package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"timesheets.service/internal/core/model"
)

const userSelect = `SELECT u.id, u.username, u.email, u.password_hash, u.role, u.employer_id,
       COALESCE(e.username, ''), u.is_active, u.failed_attempts, u.last_login, u.created_at
FROM users u
LEFT JOIN users e ON e.id = u.employer_id`

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u          model.User
		employerID sql.NullInt64
		lastLogin  dbTime
		createdAt  dbTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &employerID,
		&u.EmployerName, &u.IsActive, &u.FailedAttempts, &lastLogin, &createdAt)
	if err != nil {
		return nil, err
	}
	if employerID.Valid {
		id := employerID.Int64
		u.EmployerID = &id
	}
	u.LastLogin = lastLogin.ptr()
	u.CreatedAt = createdAt.Time
	return &u, nil
}

func (r *SQLRepository) getUser(ctx context.Context, where string, args ...any) (*model.User, error) {
	u, err := scanUser(r.queryRow(ctx, userSelect+" WHERE "+where+" ORDER BY u.id LIMIT 1", args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

// CreateUser inserts u and returns its id.
func (r *SQLRepository) CreateUser(ctx context.Context, u *model.User) (int64, error) {
	query := `INSERT INTO users (username, email, password_hash, role, employer_id, is_active, failed_attempts, created_at)
              VALUES (?, ?, ?, ?, ?, ?, 0, ?) RETURNING id`

	var id int64
	err := r.queryRow(ctx, query, u.Username, u.Email, u.PasswordHash, string(u.Role), u.EmployerID, true, r.now().UTC()).Scan(&id)
	if isUniqueViolation(err) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SQLRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return r.getUser(ctx, "u.id = ?", id)
}

// FindUserByLogin matches the exact username or the lower-cased email.
func (r *SQLRepository) FindUserByLogin(ctx context.Context, usernameOrEmail string) (*model.User, error) {
	return r.getUser(ctx, "u.username = ? OR u.email = ?", usernameOrEmail, strings.ToLower(usernameOrEmail))
}

// FindUserByUsernameFold matches the username ignoring case.
func (r *SQLRepository) FindUserByUsernameFold(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, "LOWER(u.username) = LOWER(?)", username)
}

func (r *SQLRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE username = ? LIMIT 1`, username)
}

func (r *SQLRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE email = ? LIMIT 1`, email)
}

func (r *SQLRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.queryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SearchUsers returns up to limit users of role whose username contains
// query, ignoring case, ordered by username.
func (r *SQLRepository) SearchUsers(ctx context.Context, role model.Role, query string, limit int) ([]model.User, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	rows, err := r.query(ctx,
		userSelect+` WHERE u.role = ? AND LOWER(u.username) LIKE ? ESCAPE '\' ORDER BY u.username ASC LIMIT ?`,
		string(role), pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateLoginState stores the outcome of a login attempt. A nil lastLogin
// keeps the stored value.
func (r *SQLRepository) UpdateLoginState(ctx context.Context, id int64, failedAttempts int, isActive bool, lastLogin *time.Time) error {
	query := `UPDATE users
              SET failed_attempts = ?,
                  is_active = ?,
                  last_login = COALESCE(?, last_login)
              WHERE id = ?`

	var login any
	if lastLogin != nil {
		login = lastLogin.UTC()
	}
	return r.execOne(ctx, query, failedAttempts, isActive, login, id)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
