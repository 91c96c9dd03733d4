package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"outlay/internal/core"
	"outlay/internal/services"
)

// MemoryStore is an in-process implementation of services.Store. It backs
// the memory data backend and doubles as the fake for service and handler
// tests.
type MemoryStore struct {
	mu            sync.RWMutex
	accounts      map[int64]core.Account
	accountEmails map[string]int64
	expenses      map[int64]core.Expense
	sessions      map[string]services.Session
	nextAccountID int64
	nextExpenseID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:      make(map[int64]core.Account),
		accountEmails: make(map[string]int64),
		expenses:      make(map[int64]core.Expense),
		sessions:      make(map[string]services.Session),
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, email, passwordHash string) (core.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accountEmails[email]; exists {
		return core.Account{}, core.ErrDuplicateAccount
	}

	m.nextAccountID++
	account := core.Account{
		ID:           m.nextAccountID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.accounts[account.ID] = account
	m.accountEmails[email] = account.ID
	return account, nil
}

func (m *MemoryStore) AccountByEmail(ctx context.Context, email string) (core.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.accountEmails[email]
	if !exists {
		return core.Account{}, core.ErrNotFound
	}
	return m.accounts[id], nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, s services.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
	return nil
}

func (m *MemoryStore) SessionByToken(ctx context.Context, token string) (services.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[token]
	if !exists {
		return services.Session{}, core.ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[token]; !exists {
		return core.ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func (m *MemoryStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for token, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, token)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextExpenseID++
	e.ID = m.nextExpenseID
	e.CreatedAt = time.Now().UTC()
	m.expenses[e.ID] = e
	return e, nil
}

func (m *MemoryStore) ExpensesForOwner(ctx context.Context, ownerID int64, r core.DateRange) ([]core.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Expense
	for _, e := range m.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if !r.Contains(e.SpentOn) {
			continue
		}
		out = append(out, e)
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, ownerID, expenseID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.expenses[expenseID]
	if !exists || e.OwnerID != ownerID {
		// An existing record of another owner is indistinguishable from an
		// absent one.
		return core.ErrNotFound
	}
	delete(m.expenses, expenseID)
	return nil
}

func (m *MemoryStore) CountForOwner(ctx context.Context, ownerID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int64
	for _, e := range m.expenses {
		if e.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RecentForOwner(ctx context.Context, ownerID int64, limit int) ([]core.Expense, error) {
	out, err := m.ExpensesForOwner(ctx, ownerID, core.DateRange{})
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// sortNewestFirst orders by spent-on date descending, newest insertion (id)
// first within the same day.
func sortNewestFirst(expenses []core.Expense) {
	sort.Slice(expenses, func(i, j int) bool {
		if !expenses[i].SpentOn.Equal(expenses[j].SpentOn.Time) {
			return expenses[i].SpentOn.After(expenses[j].SpentOn.Time)
		}
		return expenses[i].ID > expenses[j].ID
	})
}
