package purchase

import (
	"errors"
	"sync"
)

// ErrNoCheckout is returned when a callback arrives with no checkout
// pending.
var ErrNoCheckout = errors.New("no checkout in progress")

// PendingCheckout is the callback-free view of an open checkout,
// handed to the client runtime so it can construct the widget.
type PendingCheckout struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
}

// CallbackGateway implements Gateway for a checkout widget hosted in
// the client runtime. Open parks the options; the client fetches the
// pending checkout, runs the widget, and reports exactly one terminal
// callback. Complete and Dismiss are mutually exclusive: whichever
// arrives first consumes the pending checkout.
type CallbackGateway struct {
	mu      sync.Mutex
	current *CheckoutOptions
}

// NewCallbackGateway creates an empty gateway
func NewCallbackGateway() *CallbackGateway {
	return &CallbackGateway{}
}

// Open parks the checkout options until a terminal callback arrives
func (g *CallbackGateway) Open(opts CheckoutOptions) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = &opts
	return nil
}

// Pending returns the open checkout, if any
func (g *CallbackGateway) Pending() (PendingCheckout, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return PendingCheckout{}, false
	}
	o := g.current
	return PendingCheckout{
		Key:         o.Key,
		Amount:      o.Amount,
		Currency:    o.Currency,
		Name:        o.Name,
		Description: o.Description,
		Image:       o.Image,
		OrderID:     o.OrderID,
		Prefill:     o.Prefill,
	}, true
}

// Complete fires the success callback and consumes the pending checkout
func (g *CallbackGateway) Complete(res CheckoutResult) error {
	opts, err := g.take()
	if err != nil {
		return err
	}
	if opts.Handler != nil {
		opts.Handler(res)
	}
	return nil
}

// Dismiss fires the cancellation callback and consumes the pending
// checkout
func (g *CallbackGateway) Dismiss() error {
	opts, err := g.take()
	if err != nil {
		return err
	}
	if opts.OnDismiss != nil {
		opts.OnDismiss()
	}
	return nil
}

func (g *CallbackGateway) take() (*CheckoutOptions, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil, ErrNoCheckout
	}
	opts := g.current
	g.current = nil
	return opts, nil
}
