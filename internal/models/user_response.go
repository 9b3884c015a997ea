package models

// MessageResponse is a plain acknowledgment body ({"message": ...}).
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the signed token issued after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}
