package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"timesheets.service/internal/contract"
	"timesheets.service/internal/core/model"
	"timesheets.service/internal/ports/repository"
	"timesheets.service/internal/security"
)

const employerSearchLimit = 10

// AuthRepository is the storage AuthService needs.
type AuthRepository interface {
	repository.UserRepository
	repository.EmployeeRepository
	repository.SessionRepository
}

// AuthService registers accounts and issues, resolves and revokes session tokens.
type AuthService struct {
	repo            AuthRepository
	tokens          *security.TokenProvider
	hasher          *security.Hasher
	maxFailedLogins int
	now             func() time.Time
}

// NewAuthService wires the account store with token signing and password hashing.
func NewAuthService(repo AuthRepository, tokens *security.TokenProvider, hasher *security.Hasher, maxFailedLogins int) *AuthService {
	return &AuthService{
		repo:            repo,
		tokens:          tokens,
		hasher:          hasher,
		maxFailedLogins: maxFailedLogins,
		now:             time.Now,
	}
}

// Register creates an account and signs it in. Employees are attached to an
// existing employer and added to its roster.
func (s *AuthService) Register(ctx context.Context, req contract.RegisterRequest) (contract.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" || req.Password == "" {
		return contract.AuthResponse{}, ErrMissingFields
	}

	exists, err := s.repo.UsernameExists(ctx, username)
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("checking username: %w", err)
	}
	if exists {
		return contract.AuthResponse{}, ErrUserExists
	}
	exists, err = s.repo.EmailExists(ctx, email)
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("checking email: %w", err)
	}
	if exists {
		return contract.AuthResponse{}, ErrEmailExists
	}

	role, ok := model.ParseRole(req.Role)
	if !ok {
		return contract.AuthResponse{}, ErrInvalidRole
	}

	user := &model.User{
		Username: username,
		Email:    email,
		Role:     role,
		IsActive: true,
	}

	if role == model.RoleEmployee {
		employer, err := s.findEmployer(ctx, req.EmployerUsername)
		if err != nil {
			return contract.AuthResponse{}, err
		}
		user.EmployerID = &employer.ID
		user.EmployerName = employer.Username
	}

	user.PasswordHash, err = s.hasher.Hash(req.Password)
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("hashing password: %w", err)
	}

	user.ID, err = s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return contract.AuthResponse{}, ErrUserExists
	}
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("creating user: %w", err)
	}

	if role == model.RoleEmployee {
		if _, err := s.repo.CreateEmployee(ctx, user.Username, *user.EmployerID); err != nil {
			return contract.AuthResponse{}, fmt.Errorf("adding employee to roster: %w", err)
		}
	}

	log.Ctx(ctx).Info().Int64("user_id", user.ID).Str("role", string(role)).Msg("User registered")
	return s.signIn(ctx, user)
}

func (s *AuthService) findEmployer(ctx context.Context, employerUsername *string) (*model.User, error) {
	name := ""
	if employerUsername != nil {
		name = strings.TrimSpace(*employerUsername)
	}
	if name == "" {
		return nil, ErrEmployerRequired
	}
	employer, err := s.repo.FindUserByUsernameFold(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEmployerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up employer: %w", err)
	}
	if employer.Role != model.RoleEmployer {
		return nil, ErrEmployerNotFound
	}
	return employer, nil
}

// Login checks credentials by username or email. Each wrong password counts
// towards a lockout that disables the account.
func (s *AuthService) Login(ctx context.Context, req contract.LoginRequest) (contract.AuthResponse, error) {
	input := strings.TrimSpace(req.Username)
	if input == "" {
		return contract.AuthResponse{}, ErrInvalidCredentials
	}

	user, err := s.repo.FindUserByLogin(ctx, input)
	if errors.Is(err, repository.ErrNotFound) {
		return contract.AuthResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return contract.AuthResponse{}, ErrAccountDisabled
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		failed := user.FailedAttempts + 1
		locked := failed >= s.maxFailedLogins
		if err := s.repo.UpdateLoginState(ctx, user.ID, failed, !locked, nil); err != nil {
			return contract.AuthResponse{}, fmt.Errorf("recording failed login: %w", err)
		}
		if locked {
			log.Ctx(ctx).Warn().Int64("user_id", user.ID).Int("failed_attempts", failed).Msg("Account locked")
			return contract.AuthResponse{}, ErrAccountLocked
		}
		return contract.AuthResponse{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLoginState(ctx, user.ID, 0, true, &now); err != nil {
		return contract.AuthResponse{}, fmt.Errorf("recording login: %w", err)
	}
	user.FailedAttempts = 0
	user.LastLogin = &now

	return s.signIn(ctx, user)
}

// signIn issues a token and makes it the only active session of the user.
func (s *AuthService) signIn(ctx context.Context, user *model.User) (contract.AuthResponse, error) {
	token, jti, expiresAt, err := s.tokens.Issue(user.ID, user.Username, string(user.Role))
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("issuing token: %w", err)
	}

	if err := s.repo.DeactivateUserSessions(ctx, user.ID); err != nil {
		return contract.AuthResponse{}, fmt.Errorf("revoking previous sessions: %w", err)
	}
	err = s.repo.CreateSession(ctx, &model.UserSession{
		ID:        jti,
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		IsActive:  true,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return contract.AuthResponse{}, fmt.Errorf("storing session: %w", err)
	}

	return contract.AuthResponse{Token: token, User: ToContractUser(user)}, nil
}

// Logout revokes token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.repo.DeactivateSession(ctx, token); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its user. The token must carry a
// valid signature and belong to an active, unexpired session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	session, err := s.repo.FindSessionByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	if !session.IsActive || !s.now().Before(session.ExpiresAt) || session.UserID != userID {
		return nil, ErrInvalidToken
	}

	user, err := s.repo.GetUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}

// CurrentUser returns the account behind token.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (contract.User, error) {
	user, err := s.Authenticate(ctx, token)
	if err != nil {
		return contract.User{}, err
	}
	return ToContractUser(user), nil
}

// SearchEmployers returns up to ten employers whose username contains query,
// ignoring case, ordered by username.
func (s *AuthService) SearchEmployers(ctx context.Context, query string) ([]contract.User, error) {
	users, err := s.repo.SearchUsers(ctx, model.RoleEmployer, strings.TrimSpace(query), employerSearchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching employers: %w", err)
	}
	out := make([]contract.User, 0, len(users))
	for i := range users {
		out = append(out, ToContractUser(&users[i]))
	}
	return out, nil
}
