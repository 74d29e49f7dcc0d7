package gateway

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
)

// defaultTimeout bounds the outbound order-creation call so a stalled gateway
// degrades to an error instead of hanging the request.
const defaultTimeout = 5 * time.Second

// OrderRequest describes the order to open with the gateway.
type OrderRequest struct {
	Amount   int64  // smallest currency unit (paise)
	Currency string // e.g. "INR"
	Receipt  string
	Notes    map[string]interface{} // opaque metadata echoed back to checkout
}

// Order is the gateway-side order descriptor returned on creation.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt,omitempty"`
}

// OrderCreator opens an order with the payment gateway using a creator's
// credentials. Implemented by RazorpayGateway; tests substitute fakes.
type OrderCreator interface {
	CreateOrder(ctx context.Context, keyID, keySecret string, req OrderRequest) (*Order, error)
}

// RazorpayGateway creates orders through the Razorpay Orders API. A client is
// constructed per call because each creator carries their own key pair.
type RazorpayGateway struct {
	timeout time.Duration
}

// NewRazorpayGateway returns a gateway with the default call timeout.
func NewRazorpayGateway() *RazorpayGateway {
	return &RazorpayGateway{timeout: defaultTimeout}
}

// CreateOrder opens a Razorpay order. The SDK call does not take a context,
// so it runs in a goroutine raced against the deadline.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, keyID, keySecret string, req OrderRequest) (*Order, error) {
	client := razorpay.NewClient(keyID, keySecret)

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    req.Notes,
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := client.Order.Create(data, nil)
		ch <- result{body: body, err: err}
	}()

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("create order: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("create order: %w", r.err)
		}
		return orderFromBody(r.body)
	}
}

// orderFromBody extracts the order descriptor from the SDK's untyped response.
func orderFromBody(body map[string]interface{}) (*Order, error) {
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("create order: response missing order id")
	}
	order := &Order{ID: id}
	if amt, ok := body["amount"].(float64); ok {
		order.Amount = int64(amt)
	}
	if cur, ok := body["currency"].(string); ok {
		order.Currency = cur
	}
	if rcpt, ok := body["receipt"].(string); ok {
		order.Receipt = rcpt
	}
	return order, nil
}
