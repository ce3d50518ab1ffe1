package models

import "time"

// Expense is a single spending record as stored in the user's
// expenses collection.
type Expense struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// ExpenseData is the payload accepted when creating or updating an
// expense. Date is a calendar date string (YYYY-MM-DD).
type ExpenseData struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Category    string  `json:"category" validate:"required"`
	Date        string  `json:"date" validate:"required"`
	Description string  `json:"description,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// MonthlyTrendItem is one bucket of the monthly spending trend.
type MonthlyTrendItem struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}
