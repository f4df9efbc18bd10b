// Package budget manages monthly plan rows: per-category spending targets
// scoped to a user and a (year, month) pair.
package budget

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

// CreatePlan stores a batch of planned expenses for one month. The batch
// is all-or-nothing: if any row fails to insert, none survive. Duplicate
// categories within the batch or against existing rows are accepted as
// independent rows.
func (s *Service) CreatePlan(ctx context.Context, userID int64, year, month int, planned []core.PlannedExpense) ([]core.BudgetPlan, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	if len(planned) == 0 {
		return nil, core.NewValidationError("budget plan must contain at least one planned expense")
	}
	for _, p := range planned {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	var created []core.BudgetPlan
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		for _, p := range planned {
			plan, err := tx.InsertPlan(ctx, userID, year, month, p.Category, p.Amount)
			if err != nil {
				return core.NewStorageError("create budget plan", err)
			}
			created = append(created, *plan)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Budget plan created",
		"user_id", userID,
		"year", year,
		"month", month,
		"entries", len(created))
	return created, nil
}

// GetPlans returns the month's plan rows in insertion order. A month with
// no plan yields an empty slice, not an error.
func (s *Service) GetPlans(ctx context.Context, userID int64, year, month int) ([]core.BudgetPlan, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	return s.store.ListPlans(ctx, userID, year, month)
}

// UpdatePlan replaces the planned amount of a single plan row.
func (s *Service) UpdatePlan(ctx context.Context, userID, planID, amount int64) (*core.BudgetPlan, error) {
	// A plan row may budget zero for a category, unlike expenses.
	if amount < 0 {
		return nil, core.NewValidationError("planned amount must not be negative")
	}

	var updated *core.BudgetPlan
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		plan, err := tx.GetPlan(ctx, userID, planID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return core.NewNotFoundError("budget plan not found")
			}
			return err
		}
		if err := tx.UpdatePlanAmount(ctx, planID, amount); err != nil {
			return err
		}
		plan.PlannedAmount = amount
		updated = plan
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Budget plan updated",
		"user_id", userID,
		"plan_id", planID,
		"planned_amount", amount)
	return updated, nil
}

// DeletePlans removes every plan row for the month and reports how many
// went away. A month with nothing to delete is a not-found condition.
func (s *Service) DeletePlans(ctx context.Context, userID int64, year, month int) (int64, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return 0, err
	}

	var deleted int64
	err := s.store.WithinTx(ctx, func(tx *storage.Tx) error {
		n, err := tx.DeletePlans(ctx, userID, year, month)
		if err != nil {
			return err
		}
		if n == 0 {
			return core.NewNotFoundError("no budget plan found")
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Budget plans deleted",
		"user_id", userID,
		"year", year,
		"month", month,
		"deleted", deleted)
	return deleted, nil
}
