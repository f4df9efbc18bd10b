package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/budget"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/report"
	"budgetbuddy/internal/storage"
)

type HandlersSuite struct {
	suite.Suite
	store  *storage.Store
	server *Server
	token  string
}

func (s *HandlersSuite) SetupTest() {
	store, err := storage.Open(":memory:")
	s.Require().NoError(err)
	s.store = store

	authSvc := auth.New(store, 4, time.Hour)
	ledgerSvc := ledger.New(store, nil)
	budgetSvc := budget.New(store)
	reportSvc := report.New(store)
	s.server = NewServer(":0", nil, store, authSvc, ledgerSvc, budgetSvc, reportSvc)

	s.token = s.signupAndLogin("alice@example.com", "alice", "correct horse")
}

func (s *HandlersSuite) TearDownTest() {
	s.Require().NoError(s.server.Shutdown(context.Background()))
	s.Require().NoError(s.store.Close())
}

func (s *HandlersSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func (s *HandlersSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(dst))
}

func (s *HandlersSuite) signupAndLogin(email, username, password string) string {
	rec := s.do(http.MethodPost, "/users/signup", "", signupRequest{
		Email: email, Username: username, Password: password,
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/users/login", "", loginRequest{Email: email, Password: password})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp loginResponse
	s.decode(rec, &resp)
	s.Require().NotEmpty(resp.AccessToken)
	return resp.AccessToken
}

func (s *HandlersSuite) addIncome(amount int64) {
	rec := s.do(http.MethodPut, "/api/income", s.token, amountRequest{Amount: amount})
	s.Require().Equal(http.StatusOK, rec.Code)
}

func (s *HandlersSuite) TestHealthEndpoints() {
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/readyz", "", nil)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *HandlersSuite) TestAuthRequired() {
	rec := s.do(http.MethodPut, "/api/income", "", amountRequest{Amount: 100})
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPut, "/api/income", "not-a-token", amountRequest{Amount: 100})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersSuite) TestLoginRejectsBadCredentials() {
	rec := s.do(http.MethodPost, "/users/login", "", loginRequest{Email: "alice@example.com", Password: "wrong"})
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersSuite) TestSignupDuplicateEmail() {
	rec := s.do(http.MethodPost, "/users/signup", "", signupRequest{
		Email: "alice@example.com", Username: "alice2", Password: "correct horse",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestIncomeAndSavingsFlow() {
	rec := s.do(http.MethodPut, "/api/income", s.token, amountRequest{Amount: 1000})
	s.Require().Equal(http.StatusOK, rec.Code)

	var balances balancesResponse
	s.decode(rec, &balances)
	s.Equal(int64(1000), balances.TotalIncome)

	rec = s.do(http.MethodPut, "/api/savings", s.token, amountRequest{Amount: 400})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &balances)
	s.Equal(int64(600), balances.TotalIncome)
	s.Equal(int64(400), balances.TotalSavings)
}

func (s *HandlersSuite) TestSavingsExceedingIncome() {
	s.addIncome(100)

	rec := s.do(http.MethodPut, "/api/savings", s.token, amountRequest{Amount: 200})
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp errorResponse
	s.decode(rec, &resp)
	s.Equal("savings cannot exceed total income", resp.Detail)
}

func (s *HandlersSuite) TestExpenseLifecycle() {
	s.addIncome(1000)

	rec := s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 150, Source: "income", Category: "Food",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var expense core.Expense
	s.decode(rec, &expense)
	s.Equal(int64(150), expense.Amount)
	s.Equal(core.CategoryFood, expense.Category)

	rec = s.do(http.MethodGet, "/api/expenses", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var expenses []core.Expense
	s.decode(rec, &expenses)
	s.Len(expenses, 1)

	rec = s.do(http.MethodGet, "/api/expenses?category=Transport", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &expenses)
	s.Empty(expenses)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", expense.ID), s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", expense.ID), s.token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersSuite) TestExpenseRejectsUnknownCategory() {
	s.addIncome(1000)

	rec := s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 150, Source: "income", Category: "Groceries",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestExpensesAreScopedPerUser() {
	s.addIncome(1000)
	rec := s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 150, Source: "income", Category: "Food",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	otherToken := s.signupAndLogin("bob@example.com", "bob", "correct horse")
	rec = s.do(http.MethodGet, "/api/expenses", otherToken, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var expenses []core.Expense
	s.decode(rec, &expenses)
	s.Empty(expenses)
}

func (s *HandlersSuite) TestBudgetPlanLifecycle() {
	rec := s.do(http.MethodPost, "/api/budget-plans/2026/8", s.token, planRequest{
		PlannedExpenses: []core.PlannedExpense{
			{Category: core.CategoryFood, Amount: 300},
			{Category: core.CategoryTransport, Amount: 120},
		},
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/api/budget-plans/2026/8", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var plans []core.BudgetPlan
	s.decode(rec, &plans)
	s.Require().Len(plans, 2)

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/budget-plans/%d", plans[0].ID), s.token, amountRequest{Amount: 450})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/budget-plans/2026/8", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/budget-plans/2026/8", s.token, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlersSuite) TestBudgetPlanRejectsBadMonth() {
	rec := s.do(http.MethodGet, "/api/budget-plans/2026/13", s.token, nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlersSuite) TestMonthlyReport() {
	s.addIncome(1000)
	now := time.Now().UTC()

	rec := s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 400, Source: "income", Category: "Food",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 600, Source: "income", Category: "Transport",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/reports/monthly/%d/%d", now.Year(), int(now.Month())), s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var monthly core.MonthlyReport
	s.decode(rec, &monthly)
	s.Equal(int64(1000), monthly.TotalExpense)
	s.InDelta(40.0, monthly.PercentageByCategory[core.CategoryFood], 0.001)
	s.InDelta(60.0, monthly.PercentageByCategory[core.CategoryTransport], 0.001)
}

func (s *HandlersSuite) TestBudgetVsActualReport() {
	s.addIncome(1000)
	now := time.Now().UTC()

	rec := s.do(http.MethodPost, fmt.Sprintf("/api/budget-plans/%d/%d", now.Year(), int(now.Month())), s.token, planRequest{
		PlannedExpenses: []core.PlannedExpense{{Category: core.CategoryFood, Amount: 300}},
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/expenses", s.token, expenseRequest{
		Amount: 150, Source: "income", Category: "Food",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/reports/budget-vs-actual/%d/%d", now.Year(), int(now.Month())), s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var comparison core.BudgetComparison
	s.decode(rec, &comparison)
	s.Equal(int64(300), comparison.TotalPlanned)
	s.Equal(int64(150), comparison.TotalExpense)
	s.Require().Len(comparison.Comparison, 1)
	s.Equal(int64(150), comparison.Comparison[0].ActualAmount)
}

func (s *HandlersSuite) TestLogoutRevokesToken() {
	rec := s.do(http.MethodPost, "/users/logout", s.token, nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/users/me", s.token, nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlersSuite) TestMalformedBodyRejected() {
	req := httptest.NewRequest(http.MethodPut, "/api/income", bytes.NewBufferString("{not json"))
	req.RemoteAddr = "192.0.2.1:1234"
	req.Header.Set("Authorization", "Bearer "+s.token)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func TestHandlersSuite(t *testing.T) {
	suite.Run(t, new(HandlersSuite))
}
