package core

import (
	"fmt"
	"time"
)

const (
	CategoryFood          Category = "Food"
	CategoryTransport     Category = "Transport"
	CategoryEntertainment Category = "Entertainment"
	CategoryUtilities     Category = "Utilities"
	CategoryHealthcare    Category = "Healthcare"
	CategoryEducation     Category = "Education"
	CategoryPersonalCare  Category = "Personal Care"
	CategoryMiscellaneous Category = "Miscellaneous"
)

const (
	SourceIncome  Source = "income"
	SourceSavings Source = "savings"
)

type (
	// Category is the closed set of expense categories. Expenses and
	// budget plans draw from the same set.
	Category string

	// Source selects which balance funds an expense. It is consumed when
	// the expense is recorded and never persisted on the expense row.
	Source string

	// User carries the identity fields plus the two ledger balances.
	User struct {
		ID           int64     `json:"id"`
		Email        string    `json:"email"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		TotalIncome  int64     `json:"total_income"`
		TotalSavings int64     `json:"total_savings"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Expense is a single categorized debit. Immutable once created,
	// except for deletion.
	Expense struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"-"`
		Amount    int64     `json:"amount"`
		Category  Category  `json:"category"`
		CreatedAt time.Time `json:"created_at"`
		Exported  bool      `json:"-"`
	}

	// BudgetPlan is a planned spending amount for one
	// (user, year, month, category) tuple. Duplicate tuples are allowed
	// and are never merged.
	BudgetPlan struct {
		ID            int64     `json:"id"`
		UserID        int64     `json:"-"`
		Year          int       `json:"year"`
		Month         int       `json:"month"`
		Category      Category  `json:"category"`
		PlannedAmount int64     `json:"planned_amount"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// PlannedExpense is one item of a batch plan creation.
	PlannedExpense struct {
		Category Category `json:"category"`
		Amount   int64    `json:"amount"`
	}
)

var categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryHealthcare,
	CategoryEducation,
	CategoryPersonalCare,
	CategoryMiscellaneous,
}

// Categories returns the fixed category set in declaration order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory validates a raw category value from the API boundary.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", NewValidationError(fmt.Sprintf("unknown category %q", s))
	}
	return c, nil
}

func (s Source) Valid() bool {
	return s == SourceIncome || s == SourceSavings
}

// ParseSource validates a raw funding source value.
func ParseSource(raw string) (Source, error) {
	s := Source(raw)
	if !s.Valid() {
		return "", NewValidationError(fmt.Sprintf("unknown source %q: must be %q or %q", raw, SourceIncome, SourceSavings))
	}
	return s, nil
}

// ValidateAmount enforces the positive-integer rule shared by income,
// savings, and expense mutations.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return NewValidationError("amount must be a positive integer")
	}
	return nil
}

// ValidateYearMonth checks the calendar window used by monthly queries.
func ValidateYearMonth(year, month int) error {
	if year < 1 {
		return NewValidationError(fmt.Sprintf("invalid year %d", year))
	}
	if month < 1 || month > 12 {
		return NewValidationError(fmt.Sprintf("invalid month %d: must be between 1 and 12", month))
	}
	return nil
}

func (p PlannedExpense) Validate() error {
	if !p.Category.Valid() {
		return NewValidationError(fmt.Sprintf("unknown category %q", string(p.Category)))
	}
	if p.Amount < 0 {
		return NewValidationError("planned amount must not be negative")
	}
	return nil
}
