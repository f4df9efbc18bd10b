package core

type (
	// MonthlyReport aggregates a user's actual expenses for one calendar
	// month. Only categories with at least one expense appear in the maps.
	MonthlyReport struct {
		Year                 int                  `json:"year"`
		Month                int                  `json:"month"`
		TotalExpense         int64                `json:"total_expense"`
		ExpenseByCategory    map[Category]int64   `json:"expense_by_category"`
		PercentageByCategory map[Category]float64 `json:"percentage_by_category"`
	}

	// CategoryComparison is one planned-vs-actual row. One row is emitted
	// per budget plan row, so duplicate plan categories each produce their
	// own entry.
	CategoryComparison struct {
		Category      Category `json:"category"`
		PlannedAmount int64    `json:"planned_amount"`
		ActualAmount  int64    `json:"actual_amount"`
	}

	// BudgetComparison is the budget-vs-actual report for one month.
	// Categories with actual spending but no plan row are omitted from
	// Comparison.
	BudgetComparison struct {
		Year         int                  `json:"year"`
		Month        int                  `json:"month"`
		TotalPlanned int64                `json:"total_planned"`
		TotalExpense int64                `json:"total_expense"`
		Comparison   []CategoryComparison `json:"comparison"`
	}
)
