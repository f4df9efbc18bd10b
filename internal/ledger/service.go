// Package ledger owns the income/savings balance pair and the mutations
// that keep it consistent with the expense records.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

// EventPublisher receives post-commit notifications about expense
// mutations. Publishing is best-effort: a broker outage never fails the
// ledger operation, since the write already committed.
type EventPublisher interface {
	PublishExpenseCreated(ctx context.Context, expenseID int64) error
	PublishExpenseDeleted(ctx context.Context, expenseID int64) error
}

// Service applies ledger mutations. Every mutation runs its balance check
// and its writes inside one transaction; SQLite's single-writer locking
// keeps concurrent mutations for the same user from interleaving.
type Service struct {
	store  *storage.Store
	events EventPublisher
}

func New(store *storage.Store, events EventPublisher) *Service {
	return &Service{store: store, events: events}
}

// AddIncome credits total_income by a positive amount.
func (s *Service) AddIncome(ctx context.Context, userID, amount int64) (*core.User, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var updated *core.User
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		user.TotalIncome += amount
		if err := tx.UpdateBalances(ctx, user.ID, user.TotalIncome, user.TotalSavings); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Income added",
		"user_id", userID,
		"amount", amount,
		"total_income", updated.TotalIncome)
	return updated, nil
}

// AddSavings moves a positive amount from total_income to total_savings.
// Savings is funded strictly out of income, never created from nothing.
func (s *Service) AddSavings(ctx context.Context, userID, amount int64) (*core.User, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}

	var updated *core.User
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if amount > user.TotalIncome {
			return core.NewValidationError("savings cannot exceed total income")
		}
		user.TotalIncome -= amount
		user.TotalSavings += amount
		if err := tx.UpdateBalances(ctx, user.ID, user.TotalIncome, user.TotalSavings); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Savings added",
		"user_id", userID,
		"amount", amount,
		"total_income", updated.TotalIncome,
		"total_savings", updated.TotalSavings)
	return updated, nil
}

// AddExpense debits the chosen balance and records the expense row in the
// same transaction. The funding source is consumed here and not persisted:
// once recorded, an expense no longer knows which balance paid for it.
func (s *Service) AddExpense(ctx context.Context, userID, amount int64, source core.Source, category core.Category) (*core.Expense, error) {
	if err := core.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if !source.Valid() {
		return nil, core.NewValidationError("unknown expense source")
	}
	if !category.Valid() {
		return nil, core.NewValidationError("unknown expense category")
	}

	var created *core.Expense
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		switch source {
		case core.SourceIncome:
			if amount > user.TotalIncome {
				return core.NewValidationError("expense cannot exceed total income")
			}
			user.TotalIncome -= amount
		case core.SourceSavings:
			if amount > user.TotalSavings {
				return core.NewValidationError("expense cannot exceed total savings")
			}
			user.TotalSavings -= amount
		}

		if err := tx.UpdateBalances(ctx, user.ID, user.TotalIncome, user.TotalSavings); err != nil {
			return err
		}
		created, err = tx.InsertExpense(ctx, user.ID, amount, category, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense added",
		"user_id", userID,
		"expense_id", created.ID,
		"amount", amount,
		"category", string(category),
		"source", string(source))

	if s.events != nil {
		if err := s.events.PublishExpenseCreated(ctx, created.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense created event",
				"expense_id", created.ID, "error", err)
		}
	}
	return created, nil
}

// DeleteExpense removes the expense and credits its full amount back to
// total_income, regardless of which balance originally funded it. That
// asymmetry is deliberate and load-bearing for callers that rely on it.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID int64) (*core.User, error) {
	var updated *core.User
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		expense, err := tx.GetExpense(ctx, userID, expenseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NewNotFoundError("expense not found")
			}
			return err
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		user.TotalIncome += expense.Amount
		if err := tx.UpdateBalances(ctx, user.ID, user.TotalIncome, user.TotalSavings); err != nil {
			return err
		}
		if err := tx.DeleteExpense(ctx, userID, expenseID); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Expense deleted",
		"user_id", userID,
		"expense_id", expenseID,
		"total_income", updated.TotalIncome)

	if s.events != nil {
		if err := s.events.PublishExpenseDeleted(ctx, expenseID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish expense deleted event",
				"expense_id", expenseID, "error", err)
		}
	}
	return updated, nil
}

// ListExpenses returns all of the user's expenses.
func (s *Service) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

// ListExpensesByCategory filters the user's expenses by category.
func (s *Service) ListExpensesByCategory(ctx context.Context, userID int64, category core.Category) ([]core.Expense, error) {
	return s.store.ListExpensesByCategory(ctx, userID, string(category))
}
