package models

const (
	EventPaymentCompleted = "payment.completed"
	EventPaymentFailed    = "payment.failed"
)

type PaymentCompletedPayload struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type PaymentFailedPayload struct {
	OrderID  string `json:"order_id"`
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Reason   string `json:"reason,omitempty"`
}
