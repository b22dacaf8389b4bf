package purchase

// Prefill carries the contact fields shown pre-filled in the checkout
// widget
type Prefill struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// CheckoutResult is the payload delivered by the widget's success
// callback
type CheckoutResult struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// CheckoutOptions configures one invocation of the checkout widget.
// Handler and OnDismiss are mutually exclusive terminal callbacks:
// Handler fires once on success, OnDismiss fires once if the widget is
// closed without completing payment.
type CheckoutOptions struct {
	Key         string
	Amount      int64
	Currency    string
	Name        string
	Description string
	Image       string
	OrderID     string
	Prefill     Prefill
	Handler     func(CheckoutResult)
	OnDismiss   func()
}

// Gateway is the contract of the third-party checkout widget. Open
// hands control to code this system does not own; completion is
// asynchronous and callback-driven.
type Gateway interface {
	Open(opts CheckoutOptions) error
}
