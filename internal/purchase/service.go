// Package purchase orchestrates the three-step checkout handshake:
// request an order from the remote API, open the third-party checkout
// widget, and on its success callback treat the course as purchased.
// Each step is a hard sequence point; no step begins before the prior
// completes.
package purchase

import (
	"context"
	"fmt"
	"sync"

	"github.com/wencuts/masterclass/internal/errs"
	"github.com/wencuts/masterclass/internal/models"
	"github.com/wencuts/masterclass/internal/session"
	"go.uber.org/zap"
)

// orderFailedMsg is the generic retry affordance shown when order
// creation fails without a remote message
const orderFailedMsg = "Failed to initiate payment. Please try again."

// PaymentAPI is the interface that wraps the remote payment endpoint
type PaymentAPI interface {
	// Method CreateOrder requests a payment order for a course.
	CreateOrder(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrderResponse, error)
}

// SessionStore is the interface the flow needs from the session
type SessionStore interface {
	// Method Snapshot returns the current session state.
	Snapshot() session.State
	// Method MarkPurchased grants client-side entitlement to a course.
	MarkPurchased(courseID string) error
}

// CourseSource is the interface the flow needs from the catalog
type CourseSource interface {
	// Method CourseByID returns a cached course record.
	CourseByID(courseID string) (*models.Course, bool)
}

// Config holds the merchant-side checkout parameters
type Config struct {
	KeyID        string
	MerchantName string
	MerchantLogo string
}

// State is a read-only snapshot of the flow for handlers
type State struct {
	InFlight bool   `json:"inFlight"`
	Notice   string `json:"notice,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Flow runs course purchases. A single purchase may be in flight at a
// time.
type Flow struct {
	payments PaymentAPI
	gateway  Gateway
	sessions SessionStore
	courses  CourseSource
	cfg      Config
	logger   *zap.Logger

	mu       sync.Mutex
	inFlight bool
	notice   string
	errMsg   string
}

// NewFlow creates the purchase flow
func NewFlow(payments PaymentAPI, gateway Gateway, sessions SessionStore, courses CourseSource, cfg Config, logger *zap.Logger) *Flow {
	return &Flow{
		payments: payments,
		gateway:  gateway,
		sessions: sessions,
		courses:  courses,
		cfg:      cfg,
		logger:   logger,
	}
}

// Buy purchases a course for the current session. The call returns
// once the checkout widget has been opened; the terminal outcome
// arrives through the widget's callbacks.
func (f *Flow) Buy(ctx context.Context, courseID string) error {
	sess := f.sessions.Snapshot()
	if !sess.IsAuthenticated || sess.User == nil {
		return fmt.Errorf("%w: please log in to purchase this course", errs.ErrValidation)
	}

	course, ok := f.courses.CourseByID(courseID)
	if !ok {
		return fmt.Errorf("%w: course not found", errs.ErrValidation)
	}

	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return fmt.Errorf("%w: a purchase is already in progress", errs.ErrValidation)
	}
	f.inFlight = true
	f.notice = ""
	f.errMsg = ""
	f.mu.Unlock()

	// Step 1: request an order. Failure aborts the whole flow; the
	// widget is never constructed and no partial state is recorded.
	order, err := f.payments.CreateOrder(ctx, models.PaymentOrderRequest{
		UserID:       sess.User.ID,
		CourseID:     courseID,
		MobileNumber: sess.User.MobileNumber,
	})
	if err != nil {
		f.mu.Lock()
		f.inFlight = false
		f.errMsg = errs.Message(err, orderFailedMsg)
		f.mu.Unlock()
		return err
	}

	currency := order.RazorpayOrder.Currency
	if currency == "" {
		currency = "INR"
	}

	// Step 2: hand control to the checkout widget. Amount and currency
	// come from the returned order, contact fields from the session.
	opts := CheckoutOptions{
		Key:         f.cfg.KeyID,
		Amount:      order.RazorpayOrder.Amount,
		Currency:    currency,
		Name:        f.cfg.MerchantName,
		Description: fmt.Sprintf("%s %s %s %s", courseID, sess.User.MobileNumber, sess.User.Email, sess.User.Name),
		Image:       f.cfg.MerchantLogo,
		OrderID:     order.RazorpayOrder.ID,
		Prefill: Prefill{
			Email:   sess.User.Email,
			Name:    sess.User.Name,
			Contact: sess.User.MobileNumber,
		},
		Handler:   func(res CheckoutResult) { f.complete(courseID, course.Title, res) },
		OnDismiss: func() { f.dismiss(courseID) },
	}

	if err := f.gateway.Open(opts); err != nil {
		f.mu.Lock()
		f.inFlight = false
		f.errMsg = orderFailedMsg
		f.mu.Unlock()
		return fmt.Errorf("failed to open checkout: %w", err)
	}

	return nil
}

// ClearNotice discards the current notice and error state
func (f *Flow) ClearNotice() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notice = ""
	f.errMsg = ""
}

// Snapshot returns the current flow state
func (f *Flow) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{
		InFlight: f.inFlight,
		Notice:   f.notice,
		Error:    f.errMsg,
	}
}

// complete is the widget's success callback. The course is treated as
// purchased for navigation purposes; no server-side confirmation call
// is made here, so any future payment verification belongs at this
// single seam.
func (f *Flow) complete(courseID, courseTitle string, res CheckoutResult) {
	f.logger.Info("payment successful",
		zap.String("course_id", courseID),
		zap.String("order_id", res.OrderID),
		zap.String("payment_id", res.PaymentID),
	)

	if err := f.sessions.MarkPurchased(courseID); err != nil {
		f.logger.Warn("failed to record purchase on session", zap.String("course_id", courseID), zap.Error(err))
	}

	f.mu.Lock()
	f.inFlight = false
	f.notice = fmt.Sprintf("Payment successful! You are now enrolled in %s.", courseTitle)
	f.mu.Unlock()
}

// dismiss is the widget's cancellation callback
func (f *Flow) dismiss(courseID string) {
	f.logger.Info("payment cancelled", zap.String("course_id", courseID))

	f.mu.Lock()
	f.inFlight = false
	f.notice = "Payment cancelled"
	f.mu.Unlock()
}
