package upstream

import (
	"context"

	"github.com/wencuts/masterclass/internal/models"
)

// PaymentAPI exposes the payment order endpoint
type PaymentAPI struct {
	client *Client
}

// NewPaymentAPI creates the payment endpoint group
func NewPaymentAPI(client *Client) *PaymentAPI {
	return &PaymentAPI{client: client}
}

// CreateOrder requests a payment order for a course purchase
func (a *PaymentAPI) CreateOrder(ctx context.Context, req models.PaymentOrderRequest) (*models.PaymentOrderResponse, error) {
	var resp models.PaymentOrderResponse
	if err := a.client.post(ctx, "/pay-now/", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
