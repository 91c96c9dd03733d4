package services

import (
	"context"
	"fmt"

	"outlay/internal/core"
	applog "outlay/internal/log"
)

// EventPublisher emits expense lifecycle events to interested consumers.
// A nil publisher disables eventing without failing any request.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, expenseID, accountID int64) error
	PublishExpenseDeleted(ctx context.Context, expenseID, accountID int64) error
}

// RecentLimit is how many expenses the profile overview shows.
const RecentLimit = 5

// Summary is the aggregated view over a listing: exact totals plus float
// series prepared for charting at the presentation boundary.
type Summary struct {
	ByCategory  []core.CategoryTotal
	ByMonth     []core.MonthTotal
	GrandTotal  core.Money
	TopCategory *core.CategoryTotal
}

// Profile is the account overview: lifetime totals and latest activity.
type Profile struct {
	TotalSpent  core.Money
	TopCategory *core.CategoryTotal
	Recent      []core.Expense
	Count       int64
}

// ExpenseService owns create/list/delete over expense records plus the
// aggregate views composed from them.
type ExpenseService struct {
	store     ExpenseStore
	publisher EventPublisher
	logger    *applog.Logger
}

func NewExpenseService(store ExpenseStore, publisher EventPublisher, logger *applog.Logger) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentExpense),
	}
}

// Create validates and persists a new expense for the owner. The amount must
// parse as a fixed-point decimal and spentOn, when given, as YYYY-MM-DD;
// spentOn defaults to today. Category and description are stored verbatim.
// No write happens on validation failure.
func (s *ExpenseService) Create(ctx context.Context, ownerID int64, amount, category, description, spentOn string) (core.Expense, error) {
	money, err := core.ParseAmount(amount)
	if err != nil {
		return core.Expense{}, err
	}

	day := core.Today()
	if spentOn != "" {
		day, err = core.ParseDate(spentOn)
		if err != nil {
			return core.Expense{}, err
		}
	}

	expense := core.Expense{
		OwnerID:     ownerID,
		Amount:      money,
		Category:    category,
		Description: description,
		SpentOn:     day,
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, expense)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense created",
		"expense_id", created.ID,
		"account_id", ownerID,
		"amount_cents", created.Amount.Cents,
		"category", created.Category,
		"spent_on", created.SpentOn.String())

	s.publishCreated(ctx, created)
	return created, nil
}

// List returns the owner's expenses newest first, optionally bounded by
// start/end date strings. A malformed bound never aborts the listing: the
// bound is dropped and a warning for the caller is returned alongside.
func (s *ExpenseService) List(ctx context.Context, ownerID int64, start, end string) ([]core.Expense, []string, error) {
	var (
		dateRange core.DateRange
		warnings  []string
	)

	if start != "" {
		d, err := core.ParseDate(start)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid start date %q ignored", start))
		} else {
			dateRange.Start = d
		}
	}
	if end != "" {
		d, err := core.ParseDate(end)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid end date %q ignored", end))
		} else {
			dateRange.End = d
		}
	}
	if len(warnings) > 0 {
		s.logger.WarnContext(ctx, "Malformed date filter ignored", "account_id", ownerID, "warnings", warnings)
	}

	expenses, err := s.store.ExpensesForOwner(ctx, ownerID, dateRange)
	if err != nil {
		return nil, nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, warnings, nil
}

// Delete removes an expense if and only if it belongs to the owner; absent
// records and records of other owners both answer core.ErrNotFound.
func (s *ExpenseService) Delete(ctx context.Context, ownerID, expenseID int64) error {
	if err := s.store.DeleteExpense(ctx, ownerID, expenseID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted", "expense_id", expenseID, "account_id", ownerID)
	s.publishDeleted(ctx, expenseID, ownerID)
	return nil
}

// Summarize lists with the same filtering rules as List and aggregates the
// result into category, month and grand totals plus the top category.
func (s *ExpenseService) Summarize(ctx context.Context, ownerID int64, start, end string) (Summary, []string, error) {
	expenses, warnings, err := s.List(ctx, ownerID, start, end)
	if err != nil {
		return Summary{}, nil, err
	}

	summary := Summary{
		ByCategory: core.CategoryTotals(expenses),
		ByMonth:    core.MonthTotals(expenses),
		GrandTotal: core.GrandTotal(expenses),
	}
	if top, ok := core.TopCategory(expenses); ok {
		summary.TopCategory = &top
	}
	return summary, warnings, nil
}

// ProfileFor composes the account overview: lifetime total, top category,
// the five most recent expenses and the total count.
func (s *ExpenseService) ProfileFor(ctx context.Context, ownerID int64) (Profile, error) {
	expenses, err := s.store.ExpensesForOwner(ctx, ownerID, core.DateRange{})
	if err != nil {
		return Profile{}, fmt.Errorf("profile expenses: %w", err)
	}
	count, err := s.store.CountForOwner(ctx, ownerID)
	if err != nil {
		return Profile{}, fmt.Errorf("profile count: %w", err)
	}
	recent, err := s.store.RecentForOwner(ctx, ownerID, RecentLimit)
	if err != nil {
		return Profile{}, fmt.Errorf("profile recent: %w", err)
	}

	profile := Profile{
		TotalSpent: core.GrandTotal(expenses),
		Recent:     recent,
		Count:      count,
	}
	if top, ok := core.TopCategory(expenses); ok {
		profile.TopCategory = &top
	}
	return profile, nil
}

// ExportCSV serializes all of the owner's expenses, newest first, to CSV.
func (s *ExpenseService) ExportCSV(ctx context.Context, ownerID int64) ([]byte, error) {
	expenses, err := s.store.ExpensesForOwner(ctx, ownerID, core.DateRange{})
	if err != nil {
		return nil, fmt.Errorf("export expenses: %w", err)
	}
	out, err := core.ExportCSV(expenses)
	if err != nil {
		return nil, fmt.Errorf("export csv: %w", err)
	}

	s.logger.InfoContext(ctx, "CSV export produced", "account_id", ownerID, "records", len(expenses))
	return out, nil
}

func (s *ExpenseService) publishCreated(ctx context.Context, e core.Expense) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseCreated(ctx, e.ID, e.OwnerID); err != nil {
		// Eventing is best effort; the write already succeeded.
		s.logger.ErrorContext(ctx, "Failed to publish expense created event",
			"expense_id", e.ID, "error", err)
	}
}

func (s *ExpenseService) publishDeleted(ctx context.Context, expenseID, accountID int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseDeleted(ctx, expenseID, accountID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish expense deleted event",
			"expense_id", expenseID, "error", err)
	}
}
