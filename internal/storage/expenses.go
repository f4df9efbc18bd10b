package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

const expenseColumns = "id, user_id, amount, category, created_at, exported"

func scanExpense(row interface{ Scan(...any) error }) (*core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.CreatedAt, &e.Exported)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// monthWindow returns the half-open [start, end) range covering one
// calendar month in UTC.
func monthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// InsertExpense records one expense row for the user inside the
// transaction that also debits the funding balance.
func (t *Tx) InsertExpense(ctx context.Context, userID, amount int64, category core.Category, createdAt time.Time) (*core.Expense, error) {
	res, err := t.tx.ExecContext(ctx,
		"INSERT INTO expenses (user_id, amount, category, created_at) VALUES (?, ?, ?, ?)",
		userID, amount, string(category), createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("expense id: %w", err)
	}

	e, err := scanExpense(t.tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get inserted expense: %w", err)
	}
	return e, nil
}

// GetExpense is scoped by owner: a foreign id behaves like a missing one.
func (t *Tx) GetExpense(ctx context.Context, userID, id int64) (*core.Expense, error) {
	e, err := scanExpense(t.tx.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND user_id = ?", id, userID))
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (t *Tx) DeleteExpense(ctx context.Context, userID, id int64) error {
	res, err := t.tx.ExecContext(ctx,
		"DELETE FROM expenses WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete expense: %w", sql.ErrNoRows)
	}
	return nil
}

// ListExpenses returns all of the user's expenses in insertion order.
func (s *Store) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY id", userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collectExpenses(rows)
}

// ListExpensesByCategory filters by exact category text. A value outside
// the category set simply matches nothing; the API boundary decides
// whether to reject it first.
func (s *Store) ListExpensesByCategory(ctx context.Context, userID int64, category string) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND category = ? ORDER BY id",
		userID, category)
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	return collectExpenses(rows)
}

// ListExpensesInMonth buckets by the created_at calendar month.
func (s *Store) ListExpensesInMonth(ctx context.Context, userID int64, year, month int) ([]core.Expense, error) {
	start, end := monthWindow(year, month)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND created_at >= ? AND created_at < ? ORDER BY id",
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list expenses in month: %w", err)
	}
	return collectExpenses(rows)
}

// GetExpenseByID is used by the export worker, which is not bound to a
// requesting user.
func (s *Store) GetExpenseByID(ctx context.Context, id int64) (*core.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListUnexportedExpenses returns expenses the export worker has not yet
// appended to the spreadsheet, oldest first.
func (s *Store) ListUnexportedExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE exported = 0 AND export_error = 0 ORDER BY id LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported expenses: %w", err)
	}
	return collectExpenses(rows)
}

func (s *Store) MarkExpenseExported(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET exported = 1, export_error = 0 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark expense exported: %w", err)
	}
	return nil
}

func (s *Store) MarkExpenseExportError(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET export_error = 1 WHERE id = ?", id); err != nil {
		return fmt.Errorf("mark expense export error: %w", err)
	}
	return nil
}
