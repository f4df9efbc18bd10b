// Package report derives read-only monthly summaries from expense and
// budget plan rows. Nothing here mutates state.
package report

import (
	"context"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

// Monthly aggregates the month's expenses per category. Percentages are
// shares of the month's total; a month with no expenses reports every
// percentage as zero rather than dividing by zero.
func (s *Service) Monthly(ctx context.Context, userID int64, year, month int) (*core.MonthlyReport, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesInMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	report := &core.MonthlyReport{
		Year:                 year,
		Month:                month,
		ExpenseByCategory:    make(map[core.Category]int64),
		PercentageByCategory: make(map[core.Category]float64),
	}
	for _, e := range expenses {
		report.TotalExpense += e.Amount
		report.ExpenseByCategory[e.Category] += e.Amount
	}
	for category, amount := range report.ExpenseByCategory {
		if report.TotalExpense > 0 {
			report.PercentageByCategory[category] = float64(amount) / float64(report.TotalExpense) * 100
		} else {
			report.PercentageByCategory[category] = 0
		}
	}
	return report, nil
}

// BudgetVsActual compares the month's plan against what was actually
// spent. The comparison carries one row per plan row, in plan insertion
// order; planned categories with no spending show an actual of zero, and
// spending in categories the plan never mentions is left out entirely.
func (s *Service) BudgetVsActual(ctx context.Context, userID int64, year, month int) (*core.BudgetComparison, error) {
	if err := core.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	plans, err := s.store.ListPlans(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	expenses, err := s.store.ListExpensesInMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}

	actualByCategory := make(map[core.Category]int64)
	comparison := &core.BudgetComparison{
		Year:       year,
		Month:      month,
		Comparison: make([]core.CategoryComparison, 0, len(plans)),
	}
	for _, e := range expenses {
		actualByCategory[e.Category] += e.Amount
		comparison.TotalExpense += e.Amount
	}
	for _, plan := range plans {
		comparison.TotalPlanned += plan.PlannedAmount
		comparison.Comparison = append(comparison.Comparison, core.CategoryComparison{
			Category:      plan.Category,
			PlannedAmount: plan.PlannedAmount,
			ActualAmount:  actualByCategory[plan.Category],
		})
	}
	return comparison, nil
}
