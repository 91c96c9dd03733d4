// Package services orchestrates the credential store and expense repository
// over an injected storage collaborator. Every operation takes the owning
// account id explicitly; nothing reads request-global state.
package services

import (
	"context"
	"time"

	"outlay/internal/core"
)

// Session is an issued bearer token resolving to one account until expiry.
type Session struct {
	ID        string
	Token     string
	AccountID int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// AccountStore persists accounts. CreateAccount returns
// core.ErrDuplicateAccount when the normalized email is taken;
// AccountByEmail returns core.ErrNotFound when absent.
type AccountStore interface {
	CreateAccount(ctx context.Context, email, passwordHash string) (core.Account, error)
	AccountByEmail(ctx context.Context, email string) (core.Account, error)
}

// SessionStore persists issued sessions.
type SessionStore interface {
	SaveSession(ctx context.Context, s Session) error
	SessionByToken(ctx context.Context, token string) (Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// ExpenseStore persists expense records, always scoped to an owner.
// ExpensesForOwner and RecentForOwner return records ordered by spent-on
// date descending, newest insertion first within a day. DeleteExpense
// returns core.ErrNotFound both for absent records and records owned by a
// different account.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ExpensesForOwner(ctx context.Context, ownerID int64, r core.DateRange) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, expenseID int64) error
	CountForOwner(ctx context.Context, ownerID int64) (int64, error)
	RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error)
}

// Store is the combined storage collaborator both services share.
type Store interface {
	AccountStore
	SessionStore
	ExpenseStore
}
