package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"outlay/internal/auth"
	"outlay/internal/core"
	applog "outlay/internal/log"
)

// DefaultSessionTTL keeps issued tokens valid for thirty days.
const DefaultSessionTTL = 30 * 24 * time.Hour

// AccountService implements registration, authentication and session
// issuing over an injected store.
type AccountService struct {
	accounts   AccountStore
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *applog.Logger
}

func NewAccountService(accounts AccountStore, sessions SessionStore, sessionTTL time.Duration, logger *applog.Logger) *AccountService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AccountService{
		accounts:   accounts,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger.WithComponent(applog.ComponentAccount),
	}
}

// Register normalizes the email, hashes the password and persists a new
// account, returning its id. A taken email yields core.ErrDuplicateAccount;
// empty fields yield core.ErrValidation and nothing is written.
func (s *AccountService) Register(ctx context.Context, email, password string) (int64, error) {
	email = core.NormalizeEmail(email)
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", core.ErrValidation)
	}
	if password == "" {
		return 0, fmt.Errorf("%w: password is required", core.ErrValidation)
	}
	if len(password) > auth.MaxPasswordLength {
		return 0, fmt.Errorf("%w: password longer than %d bytes", core.ErrValidation, auth.MaxPasswordLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return 0, fmt.Errorf("register account: %w", err)
	}

	account, err := s.accounts.CreateAccount(ctx, email, hash)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Account registered", "account_id", account.ID)
	return account.ID, nil
}

// Authenticate resolves credentials to an account id. Unknown email and
// wrong password both come back as core.ErrAuthFailure.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (int64, error) {
	account, err := s.accounts.AccountByEmail(ctx, core.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, core.ErrAuthFailure
		}
		return 0, err
	}
	if !auth.ComparePassword(account.PasswordHash, password) {
		return 0, core.ErrAuthFailure
	}
	return account.ID, nil
}

// Login authenticates and issues a bearer token for the account.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	accountID, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := auth.NewSessionToken()
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	now := time.Now().UTC()
	session := Session{
		ID:        uuid.New().String(),
		Token:     token,
		AccountID: accountID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "Session issued", "account_id", accountID, "expires_at", session.ExpiresAt)
	return token, nil
}

// AccountForToken resolves a bearer token to the owning account id, failing
// with core.ErrAuthFailure for unknown or expired tokens.
func (s *AccountService) AccountForToken(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, core.ErrAuthFailure
	}
	session, err := s.sessions.SessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, core.ErrAuthFailure
		}
		return 0, err
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		// Expired tokens are removed opportunistically.
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return 0, core.ErrAuthFailure
	}
	return session.AccountID, nil
}

// Logout revokes a session token. Revoking an unknown token is not an error.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, token); err != nil && !errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) error {
	n, err := s.sessions.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "Expired sessions purged", "count", n)
	}
	return nil
}
