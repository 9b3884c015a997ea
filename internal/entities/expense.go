package entities

import "time"

// Split methods an expense can declare. The method is a tag only:
// participant split amounts are stored as given, no reconciliation
// against the expense amount is performed.
const (
	SplitEqual      = "equal"
	SplitExact      = "exact"
	SplitPercentage = "percentage"
)

// Participant is one user's share of an expense.
type Participant struct {
	UserID      string  `json:"user"` // UUID of the participating user
	SplitAmount float64 `json:"splitAmount"`
}

// Expense represents an expense entity in the database.
// Participants keep the order they were submitted in.
type Expense struct {
	ID           string        `json:"id"` // UUID
	Description  string        `json:"description"`
	Amount       float64       `json:"amount"`
	SplitMethod  string        `json:"splitMethod"`
	Participants []Participant `json:"participants"`
	CreatedBy    string        `json:"createdBy"` // UUID of the creating user
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}
