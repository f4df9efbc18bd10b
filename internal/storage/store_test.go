package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"budgetbuddy/internal/core"
)

type StoreSuite struct {
	suite.Suite
	store  *Store
	userID int64
}

func (s *StoreSuite) SetupTest() {
	store, err := Open(":memory:")
	s.Require().NoError(err)
	s.store = store

	user, err := store.CreateUser(context.Background(), "test@example.com", "tester", "hash")
	s.Require().NoError(err)
	s.userID = user.ID
}

func (s *StoreSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func (s *StoreSuite) TestOpenCreatesDirectoryAndMigrates() {
	path := filepath.Join(s.T().TempDir(), "nested", "test.db")
	store, err := Open(path)
	s.Require().NoError(err)
	defer store.Close()

	// Opening again replays migrations as a no-op.
	again, err := Open(path)
	s.Require().NoError(err)
	s.Require().NoError(again.Close())
}

func (s *StoreSuite) TestCreateUserDefaults() {
	user, err := s.store.GetUserByID(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Equal("test@example.com", user.Email)
	s.Equal(int64(0), user.TotalIncome)
	s.Equal(int64(0), user.TotalSavings)
	s.False(user.CreatedAt.IsZero())
}

func (s *StoreSuite) TestCreateUserDuplicateEmail() {
	_, err := s.store.CreateUser(context.Background(), "test@example.com", "other", "hash")
	s.Error(err)
	s.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *StoreSuite) TestGetUserByEmailMissing() {
	_, err := s.store.GetUserByEmail(context.Background(), "ghost@example.com")
	s.True(errors.Is(err, sql.ErrNoRows))
}

func (s *StoreSuite) TestWithinTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		if err := tx.UpdateBalances(context.Background(), s.userID, 500, 0); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	user, err := s.store.GetUserByID(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Equal(int64(0), user.TotalIncome)
}

func (s *StoreSuite) TestInsertAndListExpenses() {
	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		for i, category := range []core.Category{core.CategoryFood, core.CategoryTransport} {
			_, err := tx.InsertExpense(context.Background(), s.userID, int64(100*(i+1)), category, time.Now().UTC())
			if err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	expenses, err := s.store.ListExpenses(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Require().Len(expenses, 2)
	s.Equal(core.CategoryFood, expenses[0].Category)
	s.False(expenses[0].Exported)

	byCategory, err := s.store.ListExpensesByCategory(context.Background(), s.userID, "Transport")
	s.Require().NoError(err)
	s.Len(byCategory, 1)

	// Unknown category text matches nothing rather than failing.
	none, err := s.store.ListExpensesByCategory(context.Background(), s.userID, "Groceries")
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *StoreSuite) TestListExpensesInMonthWindow() {
	inside := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	boundary := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)

	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		for _, ts := range []time.Time{inside, boundary, before} {
			if _, err := tx.InsertExpense(context.Background(), s.userID, 100, core.CategoryFood, ts); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	expenses, err := s.store.ListExpensesInMonth(context.Background(), s.userID, 2026, 8)
	s.Require().NoError(err)
	s.Require().Len(expenses, 1)
	s.WithinDuration(inside, expenses[0].CreatedAt, time.Second)
}

func (s *StoreSuite) TestDeleteExpenseMissingRow() {
	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		return tx.DeleteExpense(context.Background(), s.userID, 9999)
	})
	s.True(errors.Is(err, sql.ErrNoRows))
}

func (s *StoreSuite) TestExportFlags() {
	var id int64
	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		e, err := tx.InsertExpense(context.Background(), s.userID, 100, core.CategoryFood, time.Now().UTC())
		if err != nil {
			return err
		}
		id = e.ID
		return nil
	})
	s.Require().NoError(err)

	unexported, err := s.store.ListUnexportedExpenses(context.Background(), 10)
	s.Require().NoError(err)
	s.Require().Len(unexported, 1)

	s.Require().NoError(s.store.MarkExpenseExported(context.Background(), id))

	unexported, err = s.store.ListUnexportedExpenses(context.Background(), 10)
	s.Require().NoError(err)
	s.Empty(unexported)

	expense, err := s.store.GetExpenseByID(context.Background(), id)
	s.Require().NoError(err)
	s.True(expense.Exported)
}

func (s *StoreSuite) TestPlanCRUD() {
	var planID int64
	err := s.store.WithinTx(context.Background(), func(tx *Tx) error {
		plan, err := tx.InsertPlan(context.Background(), s.userID, 2026, 8, core.CategoryFood, 300)
		if err != nil {
			return err
		}
		planID = plan.ID
		return nil
	})
	s.Require().NoError(err)

	plans, err := s.store.ListPlans(context.Background(), s.userID, 2026, 8)
	s.Require().NoError(err)
	s.Require().Len(plans, 1)
	s.Equal(int64(300), plans[0].PlannedAmount)

	err = s.store.WithinTx(context.Background(), func(tx *Tx) error {
		return tx.UpdatePlanAmount(context.Background(), planID, 450)
	})
	s.Require().NoError(err)

	var deleted int64
	err = s.store.WithinTx(context.Background(), func(tx *Tx) error {
		var err error
		deleted, err = tx.DeletePlans(context.Background(), s.userID, 2026, 8)
		return err
	})
	s.Require().NoError(err)
	s.Equal(int64(1), deleted)
}

func (s *StoreSuite) TestSessions() {
	expires := time.Now().UTC().Add(time.Hour)
	s.Require().NoError(s.store.CreateSession(context.Background(), "hash-1", s.userID, expires))

	user, err := s.store.GetSessionUser(context.Background(), "hash-1", time.Now().UTC())
	s.Require().NoError(err)
	s.Equal(s.userID, user.ID)

	// Expired sessions do not resolve.
	_, err = s.store.GetSessionUser(context.Background(), "hash-1", expires.Add(time.Minute))
	s.True(errors.Is(err, sql.ErrNoRows))

	s.Require().NoError(s.store.DeleteSession(context.Background(), "hash-1"))
	_, err = s.store.GetSessionUser(context.Background(), "hash-1", time.Now().UTC())
	s.True(errors.Is(err, sql.ErrNoRows))
}

func (s *StoreSuite) TestDeleteExpiredSessions() {
	now := time.Now().UTC()
	s.Require().NoError(s.store.CreateSession(context.Background(), "old", s.userID, now.Add(-time.Hour)))
	s.Require().NoError(s.store.CreateSession(context.Background(), "fresh", s.userID, now.Add(time.Hour)))

	s.Require().NoError(s.store.DeleteExpiredSessions(context.Background(), now))

	_, err := s.store.GetSessionUser(context.Background(), "fresh", now)
	s.NoError(err)
	_, err = s.store.GetSessionUser(context.Background(), "old", now)
	s.True(errors.Is(err, sql.ErrNoRows))
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}
