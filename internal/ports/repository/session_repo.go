package repository

import (
	"context"
	"database/sql"
	"errors"

	"timesheets.service/internal/core/model"
)

func (r *SQLRepository) CreateSession(ctx context.Context, s *model.UserSession) error {
	query := `INSERT INTO user_sessions (id, user_id, token, expires_at, is_active, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	_, err := r.exec(ctx, query, s.ID, s.UserID, s.Token, s.ExpiresAt.UTC(), s.IsActive, createdAt.UTC())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

func (r *SQLRepository) FindSessionByToken(ctx context.Context, token string) (*model.UserSession, error) {
	var (
		s         model.UserSession
		expiresAt dbTime
		createdAt dbTime
	)
	err := r.queryRow(ctx, `SELECT id, user_id, token, expires_at, is_active, created_at
              FROM user_sessions WHERE token = ?`, token).
		Scan(&s.ID, &s.UserID, &s.Token, &expiresAt, &s.IsActive, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = expiresAt.Time
	s.CreatedAt = createdAt.Time
	return &s, nil
}

// DeactivateSession revokes one token. Unknown tokens are ignored.
func (r *SQLRepository) DeactivateSession(ctx context.Context, token string) error {
	_, err := r.exec(ctx, `UPDATE user_sessions SET is_active = ? WHERE token = ?`, false, token)
	return err
}

// DeactivateUserSessions revokes every active token of userID.
func (r *SQLRepository) DeactivateUserSessions(ctx context.Context, userID int64) error {
	_, err := r.exec(ctx, `UPDATE user_sessions SET is_active = ? WHERE user_id = ? AND is_active = ?`, false, userID, true)
	return err
}
