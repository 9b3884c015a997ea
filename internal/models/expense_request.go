package models

// ParticipantInput is one participant entry in an add-expense request.
// SplitAmount is a pointer so that an explicit 0 passes "required".
type ParticipantInput struct {
	UserID      string   `json:"user" binding:"required"`
	SplitAmount *float64 `json:"splitAmount" binding:"required"`
}

// AddExpenseRequest represents the request body for creating an expense.
// No cross-check between amount, splitMethod and the participant split
// amounts is performed; the list is accepted as given.
type AddExpenseRequest struct {
	Description  string             `json:"description" binding:"required"`
	Amount       *float64           `json:"amount" binding:"required"`
	SplitMethod  string             `json:"splitMethod" binding:"required,oneof=equal exact percentage"`
	Participants []ParticipantInput `json:"participants" binding:"required,min=1,dive"`
}
