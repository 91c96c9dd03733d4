// Package storage provides the durable stores behind the services: a SQLite
// repository for real deployments and an in-memory store for tests and the
// memory backend.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"outlay/internal/core"
	"outlay/internal/services"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements services.Store on a SQLite database file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, email, passwordHash string) (core.Account, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (email, password_hash, created_at) VALUES (?, ?, ?)`,
		email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Account{}, core.ErrDuplicateAccount
		}
		return core.Account{}, storageErr("insert account", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, storageErr("account id", err)
	}
	return core.Account{ID: id, Email: email, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (r *SQLiteRepository) AccountByEmail(ctx context.Context, email string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM accounts WHERE email = ?`, email)

	var a core.Account
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, core.ErrNotFound
		}
		return core.Account{}, storageErr("select account", err)
	}
	return a, nil
}

func (r *SQLiteRepository) SaveSession(ctx context.Context, s services.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, token, account_id, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Token, s.AccountID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return storageErr("insert session", err)
	}
	return nil
}

func (r *SQLiteRepository) SessionByToken(ctx context.Context, token string) (services.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, token, account_id, created_at, expires_at FROM sessions WHERE token = ?`, token)

	var s services.Session
	if err := row.Scan(&s.ID, &s.Token, &s.AccountID, &s.CreatedAt, &s.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return services.Session{}, core.ErrNotFound
		}
		return services.Session{}, storageErr("select session", err)
	}
	return s, nil
}

func (r *SQLiteRepository) DeleteSession(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return storageErr("delete session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, storageErr("delete expired sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("expired sessions count", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (owner_id, amount_cents, category, description, spent_on, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Amount.Cents, e.Category, e.Description, e.SpentOn.String(), now)
	if err != nil {
		return core.Expense{}, storageErr("insert expense", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, storageErr("expense id", err)
	}
	e.ID = id
	e.CreatedAt = now
	return e, nil
}

func (r *SQLiteRepository) ExpensesForOwner(ctx context.Context, ownerID int64, dr core.DateRange) ([]core.Expense, error) {
	query := `SELECT id, owner_id, amount_cents, category, description, spent_on, created_at
		FROM expenses WHERE owner_id = ?`
	args := []any{ownerID}

	// spent_on is stored as YYYY-MM-DD text, so lexical comparison is
	// chronological.
	if !dr.Start.IsZero() {
		query += ` AND spent_on >= ?`
		args = append(args, dr.Start.String())
	}
	if !dr.End.IsZero() {
		query += ` AND spent_on <= ?`
		args = append(args, dr.End.String())
	}
	query += ` ORDER BY spent_on DESC, id DESC`

	return r.queryExpenses(ctx, query, args...)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, ownerID, expenseID int64) error {
	// Scoping the delete by owner keeps records of other accounts
	// indistinguishable from absent ones.
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, expenseID, ownerID)
	if err != nil {
		return storageErr("delete expense", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete expense count", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CountForOwner(ctx context.Context, ownerID int64) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE owner_id = ?`, ownerID).Scan(&n)
	if err != nil {
		return 0, storageErr("count expenses", err)
	}
	return n, nil
}

func (r *SQLiteRepository) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT id, owner_id, amount_cents, category, description, spent_on, created_at
		 FROM expenses WHERE owner_id = ? ORDER BY spent_on DESC, id DESC LIMIT ?`,
		ownerID, limit)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("select expenses", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			spentOn string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Amount.Cents, &e.Category, &e.Description, &spentOn, &e.CreatedAt); err != nil {
			return nil, storageErr("scan expense", err)
		}
		day, err := core.ParseDate(spentOn)
		if err != nil {
			return nil, fmt.Errorf("corrupt spent_on %q: %w", spentOn, err)
		}
		e.SpentOn = day
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate expenses", err)
	}
	return out, nil
}

// storageErr tags driver failures as storage unavailability so the transport
// can answer with a 5xx instead of leaking driver detail.
func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", core.ErrStorageUnavailable, op, err)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
