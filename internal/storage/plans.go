package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

const planColumns = "id, user_id, year, month, category, planned_amount, created_at"

func scanPlan(row interface{ Scan(...any) error }) (*core.BudgetPlan, error) {
	var p core.BudgetPlan
	err := row.Scan(&p.ID, &p.UserID, &p.Year, &p.Month, &p.Category, &p.PlannedAmount, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// InsertPlan inserts one budget plan row. There is deliberately no
// uniqueness constraint on (user, year, month, category).
func (t *Tx) InsertPlan(ctx context.Context, userID int64, year, month int, category core.Category, plannedAmount int64) (*core.BudgetPlan, error) {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO budget_plans (user_id, year, month, category, planned_amount, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, year, month, string(category), plannedAmount, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert budget plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("budget plan id: %w", err)
	}

	p, err := scanPlan(t.tx.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM budget_plans WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get inserted budget plan: %w", err)
	}
	return p, nil
}

// GetPlan is owner-scoped like GetExpense.
func (t *Tx) GetPlan(ctx context.Context, userID, id int64) (*core.BudgetPlan, error) {
	p, err := scanPlan(t.tx.QueryRowContext(ctx,
		"SELECT "+planColumns+" FROM budget_plans WHERE id = ? AND user_id = ?", id, userID))
	if err != nil {
		return nil, fmt.Errorf("get budget plan: %w", err)
	}
	return p, nil
}

func (t *Tx) UpdatePlanAmount(ctx context.Context, id, plannedAmount int64) error {
	if _, err := t.tx.ExecContext(ctx,
		"UPDATE budget_plans SET planned_amount = ? WHERE id = ?", plannedAmount, id); err != nil {
		return fmt.Errorf("update budget plan: %w", err)
	}
	return nil
}

// DeletePlans removes every plan for the month and reports how many rows
// went away.
func (t *Tx) DeletePlans(ctx context.Context, userID int64, year, month int) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM budget_plans WHERE user_id = ? AND year = ? AND month = ?",
		userID, year, month)
	if err != nil {
		return 0, fmt.Errorf("delete budget plans: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete budget plans rows: %w", err)
	}
	return n, nil
}

// ListPlans returns the month's plans in insertion order.
func (s *Store) ListPlans(ctx context.Context, userID int64, year, month int) ([]core.BudgetPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+planColumns+" FROM budget_plans WHERE user_id = ? AND year = ? AND month = ? ORDER BY id",
		userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("list budget plans: %w", err)
	}
	return collectPlans(rows)
}

func collectPlans(rows *sql.Rows) ([]core.BudgetPlan, error) {
	defer rows.Close()

	plans := []core.BudgetPlan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}
