package storage

import (
	"context"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

const userColumns = "id, email, username, password_hash, total_income, total_savings, created_at"

func scanUser(row interface{ Scan(...any) error }) (*core.User, error) {
	var u core.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.TotalIncome, &u.TotalSavings, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user with zero balances.
func (s *Store) CreateUser(ctx context.Context, email, username, passwordHash string) (*core.User, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		email, username, passwordHash, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	return s.GetUserByID(ctx, id)
}

// GetUserByID returns sql.ErrNoRows through the error chain when absent.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUser loads a user inside the transaction, so a subsequent balance
// write sees exactly the state that was checked.
func (t *Tx) GetUser(ctx context.Context, id int64) (*core.User, error) {
	u, err := scanUser(t.tx.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// UpdateBalances overwrites both ledger balances for the user.
func (t *Tx) UpdateBalances(ctx context.Context, userID, totalIncome, totalSavings int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE users SET total_income = ?, total_savings = ? WHERE id = ?",
		totalIncome, totalSavings, userID,
	)
	if err != nil {
		return fmt.Errorf("update balances: %w", err)
	}
	return nil
}
