package types

import "strings"

// ExpenseCategories lists the accepted expense categories.
var ExpenseCategories = []string{
	"Seeds",
	"Fertilizer",
	"Equipment",
	"Labor",
	"Fuel",
	"Maintenance",
	"Insurance",
	"Utilities",
	"Other",
}

// Expense is money spent on a farm.
type Expense struct {
	Record
	FarmID      int     `json:"farmId"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Vendor      string  `json:"vendor,omitempty"`
	Photos      []Photo `json:"photos,omitempty"`
}

// Validate applies the expense form rules.
func (e *Expense) Validate() error {
	v := NewValidationError("expense")
	if e.FarmID <= 0 {
		v.Add("farmId", "farm is required")
	}
	if !oneOf(e.Category, ExpenseCategories) {
		v.Add("category", "category is required")
	}
	if e.Amount <= 0 {
		v.Add("amount", "amount must be greater than 0")
	}
	requireDate(v, "date", e.Date, "date")
	if strings.TrimSpace(e.Description) == "" {
		v.Add("description", "description is required")
	}
	validatePhotos(v, e.Photos)
	return v.OrNil()
}
