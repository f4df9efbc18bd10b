package http

import (
	"errors"
	"net/http"
	"strconv"

	"budgetbuddy/internal/auth"
	"budgetbuddy/internal/core"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type"`
	User        *core.User `json:"user"`
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type expenseRequest struct {
	Amount   int64  `json:"amount"`
	Source   string `json:"source"`
	Category string `json:"category"`
}

type balancesResponse struct {
	TotalIncome  int64 `json:"total_income"`
	TotalSavings int64 `json:"total_savings"`
}

type detailResponse struct {
	Detail string `json:"detail"`
}

type planRequest struct {
	PlannedExpenses []core.PlannedExpense `json:"planned_expenses"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	token, user, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := bearerToken(r)
	if err := s.auth.Logout(r.Context(), token); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, detailResponse{Detail: "Logged out successfully"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, currentUser(r))
}

func (s *Server) handleAddIncome(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	user, err := s.ledger.AddIncome(r.Context(), currentUser(r).ID, req.Amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, balancesResponse{
		TotalIncome:  user.TotalIncome,
		TotalSavings: user.TotalSavings,
	})
}

func (s *Server) handleAddSavings(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	user, err := s.ledger.AddSavings(r.Context(), currentUser(r).ID, req.Amount)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, balancesResponse{
		TotalIncome:  user.TotalIncome,
		TotalSavings: user.TotalSavings,
	})
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	source, err := core.ParseSource(req.Source)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	expense, err := s.ledger.AddExpense(r.Context(), currentUser(r).ID, req.Amount, source, category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID

	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := core.ParseCategory(raw)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		expenses, err := s.ledger.ListExpensesByCategory(r.Context(), userID, category)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		respondJSON(w, r, http.StatusOK, expenses)
		return
	}

	expenses, err := s.ledger.ListExpenses(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, expenses)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if _, err := s.ledger.DeleteExpense(r.Context(), currentUser(r).ID, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, detailResponse{Detail: "Expense deleted successfully"})
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req planRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if _, err := s.budget.CreatePlan(r.Context(), currentUser(r).ID, year, month, req.PlannedExpenses); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, detailResponse{Detail: "Budget plan created successfully"})
}

func (s *Server) handleGetPlans(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	plans, err := s.budget.GetPlans(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, plans)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	var req amountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}

	if _, err := s.budget.UpdatePlan(r.Context(), currentUser(r).ID, id, req.Amount); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, detailResponse{Detail: "Budget plan updated successfully"})
}

func (s *Server) handleDeletePlans(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	if _, err := s.budget.DeletePlans(r.Context(), currentUser(r).ID, year, month); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, detailResponse{Detail: "Budget plan deleted successfully"})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	monthly, err := s.report.Monthly(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, monthly)
}

func (s *Server) handleBudgetVsActual(w http.ResponseWriter, r *http.Request) {
	year, month, err := pathYearMonth(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	comparison, err := s.report.BudgetVsActual(r.Context(), currentUser(r).ID, year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, comparison)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, core.NewValidationError("invalid id in path")
	}
	return id, nil
}

func pathYearMonth(r *http.Request) (int, int, error) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		return 0, 0, core.NewValidationError("invalid year in path")
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil {
		return 0, 0, core.NewValidationError("invalid month in path")
	}
	if err := core.ValidateYearMonth(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}
