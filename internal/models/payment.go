package models

// PaymentOrderRequest is the payload for creating a payment order
type PaymentOrderRequest struct {
	UserID       string `json:"user_id"`
	CourseID     string `json:"course_id"`
	MobileNumber string `json:"mobile_number"`
}

// RazorpayOrder is the order record returned by the payment endpoint
type RazorpayOrder struct {
	ID         string `json:"id"`
	Entity     string `json:"entity"`
	Amount     int64  `json:"amount"`
	AmountDue  int64  `json:"amount_due"`
	AmountPaid int64  `json:"amount_paid"`
	Attempts   int    `json:"attempts"`
	Currency   string `json:"currency"`
	Receipt    string `json:"receipt"`
	Status     string `json:"status"`
	CreatedAt  int64  `json:"created_at"`
}

// PaymentOrderResponse is returned by the pay-now endpoint
type PaymentOrderResponse struct {
	Message           string        `json:"message"`
	RazorpayOrder     RazorpayOrder `json:"razorpay_order"`
	TransactionResult string        `json:"transaction_result"`
}
