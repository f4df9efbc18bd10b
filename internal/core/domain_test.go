package core

import (
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "food", input: "Food", want: CategoryFood},
		{name: "personal care with space", input: "Personal Care", want: CategoryPersonalCare},
		{name: "miscellaneous", input: "Miscellaneous", want: CategoryMiscellaneous},
		{name: "lowercase rejected", input: "food", wantErr: true},
		{name: "unknown rejected", input: "Groceries", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseCategory(%q) expected error, got %q", tt.input, got)
				}
				if !IsValidation(err) {
					t.Errorf("ParseCategory(%q) error is not a validation error: %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoriesIsStable(t *testing.T) {
	first := Categories()
	if len(first) != 8 {
		t.Fatalf("Categories() returned %d entries, want 8", len(first))
	}

	// Mutating the returned slice must not leak into the canonical set.
	first[0] = Category("Hacked")
	if Categories()[0] != CategoryFood {
		t.Error("Categories() exposed internal state")
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		input   string
		want    Source
		wantErr bool
	}{
		{input: "income", want: SourceIncome},
		{input: "savings", want: SourceSavings},
		{input: "Income", wantErr: true},
		{input: "cash", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSource(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseSource(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSource(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSource(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(1); err != nil {
		t.Errorf("ValidateAmount(1) unexpected error: %v", err)
	}
	for _, amount := range []int64{0, -1, -100} {
		if err := ValidateAmount(amount); err == nil {
			t.Errorf("ValidateAmount(%d) expected error", amount)
		}
	}
}

func TestValidateYearMonth(t *testing.T) {
	tests := []struct {
		year    int
		month   int
		wantErr bool
	}{
		{2026, 1, false},
		{2026, 12, false},
		{2026, 0, true},
		{2026, 13, true},
		{0, 6, true},
		{-1, 6, true},
	}

	for _, tt := range tests {
		err := ValidateYearMonth(tt.year, tt.month)
		if tt.wantErr && err == nil {
			t.Errorf("ValidateYearMonth(%d, %d) expected error", tt.year, tt.month)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("ValidateYearMonth(%d, %d) unexpected error: %v", tt.year, tt.month, err)
		}
	}
}

func TestPlannedExpenseValidate(t *testing.T) {
	good := []PlannedExpense{
		{Category: CategoryFood, Amount: 100},
		{Category: CategoryFood, Amount: 0},
	}
	for _, p := range good {
		if err := p.Validate(); err != nil {
			t.Errorf("Validate() unexpected error for %+v: %v", p, err)
		}
	}

	bad := []PlannedExpense{
		{Category: Category("Rent"), Amount: 100},
		{Category: CategoryFood, Amount: -10},
	}
	for _, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("Validate() expected error for %+v", p)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	validation := NewValidationError("bad input")
	notFound := NewNotFoundError("missing")
	storage := NewStorageError("insert", errors.New("disk full"))

	if !IsValidation(validation) || IsValidation(notFound) {
		t.Error("IsValidation misclassifies")
	}
	if !IsNotFound(notFound) || IsNotFound(validation) {
		t.Error("IsNotFound misclassifies")
	}
	if got := storage.Error(); got != "insert: disk full" {
		t.Errorf("StorageError.Error() = %q", got)
	}
	if !errors.Is(storage, storage.Err) {
		t.Error("StorageError should unwrap its cause")
	}
}
