package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wencuts/masterclass/internal/purchase"
	"go.uber.org/zap"
)

// PurchaseService is the interface that wraps the purchase flow.
type PurchaseService interface {
	// Method Buy runs the three-step purchase handshake for a course.
	Buy(ctx context.Context, courseID string) error
	// Method Snapshot returns the current flow state.
	Snapshot() purchase.State
	// Method ClearNotice discards notice and error state.
	ClearNotice()
}

// PurchaseHandler handles purchase HTTP requests
type PurchaseHandler struct {
	BaseHandler
	flow    PurchaseService
	gateway *purchase.CallbackGateway
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(flow PurchaseService, gateway *purchase.CallbackGateway, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		BaseHandler: BaseHandler{Logger: logger},
		flow:        flow,
		gateway:     gateway,
	}
}

// RegisterRoutes registers all purchase handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *PurchaseHandler) RegisterRoutes(r chi.Router) {
	r.Post("/courses/{id}/purchase", h.Purchase)
	r.Get("/purchase/status", h.Status)
	r.Post("/purchase/notice/clear", h.ClearNotice)
	r.Get("/purchase/checkout", h.Checkout)
	r.Post("/purchase/checkout/complete", h.CompleteCheckout)
	r.Post("/purchase/checkout/dismiss", h.DismissCheckout)
}

// Purchase handles POST /courses/{id}/purchase. A success response
// means the checkout widget was opened; the terminal outcome is
// reported by the widget's callbacks and surfaces on /purchase/status.
func (h *PurchaseHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "id")

	if err := h.flow.Buy(r.Context(), courseID); err != nil {
		h.RespondFailure(w, err, "Failed to initiate payment. Please try again.")
		return
	}

	h.RespondNotice(w, "Checkout opened")
}

// Status handles GET /purchase/status
func (h *PurchaseHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, h.flow.Snapshot())
}

// ClearNotice handles POST /purchase/notice/clear
func (h *PurchaseHandler) ClearNotice(w http.ResponseWriter, r *http.Request) {
	h.flow.ClearNotice()
	h.RespondNotice(w, "Notice cleared")
}

// Checkout handles GET /purchase/checkout. The client runtime fetches
// the pending checkout options to construct the payment widget.
func (h *PurchaseHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	pending, ok := h.gateway.Pending()
	if !ok {
		h.RespondError(w, http.StatusNotFound, "no checkout in progress")
		return
	}

	h.RespondJSON(w, http.StatusOK, pending)
}

// CompleteCheckout handles POST /purchase/checkout/complete, the
// widget's success callback relayed by the client runtime.
func (h *PurchaseHandler) CompleteCheckout(w http.ResponseWriter, r *http.Request) {
	var res purchase.CheckoutResult
	if err := decodeBody(r, &res); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.gateway.Complete(res); err != nil {
		h.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	h.RespondNotice(w, "Payment recorded")
}

// DismissCheckout handles POST /purchase/checkout/dismiss, the
// widget's cancellation callback relayed by the client runtime.
func (h *PurchaseHandler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.gateway.Dismiss(); err != nil {
		h.RespondError(w, http.StatusConflict, err.Error())
		return
	}

	h.RespondNotice(w, "Checkout dismissed")
}
