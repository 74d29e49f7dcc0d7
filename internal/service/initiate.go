package service

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/zyvex/zyvex-go/internal/auth"
	"github.com/zyvex/zyvex-go/internal/gateway"
	"github.com/zyvex/zyvex-go/internal/payments"
	"github.com/zyvex/zyvex-go/internal/validation"
)

// InitiateResult carries the gateway order descriptor for client checkout.
type InitiateResult struct {
	Order *gateway.Order `json:"order"`
}

// InitiatePayment validates the request, opens a gateway order with the
// creator's credentials and records a pending payment.
//
// Validation happens before any external call. Persisting the pending record
// is best-effort: checkout availability wins over bookkeeping completeness,
// so a failed insert is logged and the order still returned.
func (s *Service) InitiatePayment(ctx context.Context, user *auth.User, req validation.InitiateRequest) (*InitiateResult, *Error) {
	if req.Amount <= 0 {
		return nil, &Error{Code: CodeValidation, Message: "Amount is required and must be greater than 0"}
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, &Error{Code: CodeValidation, Message: "Name is required"}
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &Error{Code: CodeValidation, Message: "Message is required"}
	}

	if user == nil || user.ID == "" {
		return nil, &Error{Code: CodeAuth, Message: "User not authenticated"}
	}

	cctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	creds, err := s.creds.Get(cctx, user.ID)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}
	if creds == nil {
		return nil, &Error{Code: CodeNotConfigured, Message: "Razorpay credentials not found. Please add your credentials in the profile menu."}
	}

	// notes travel to the client checkout: payer metadata plus the public key
	order, err := s.gateway.CreateOrder(ctx, creds.KeyID, creds.KeySecret, gateway.OrderRequest{
		Amount:   req.Amount * 100, // paise
		Currency: "INR",
		Receipt:  receiptToken(),
		Notes: map[string]interface{}{
			"name":    name,
			"message": message,
			"key_id":  creds.KeyID,
		},
	})
	if err != nil {
		return nil, dependencyError(err, CodeGateway, "Error creating payment order")
	}

	now := s.nowFunc()
	rec := payments.Record{
		OrderID:   order.ID,
		Name:      name,
		Amount:    order.Amount,
		Message:   message,
		Recipient: user.ID,
		Status:    payments.StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}

	pctx, pcancel := context.WithTimeout(ctx, storeTimeout)
	defer pcancel()
	if err := s.payments.Put(pctx, rec); err != nil {
		// checkout proceeds even when bookkeeping is down
		log.Printf("[payments] saving record for order=%s failed: %v", order.ID, err)
	}

	s.recordOutcome(ctx, "initiated")
	return &InitiateResult{Order: order}, nil
}

func receiptToken() string {
	return "receipt_" + strings.Split(uuid.NewString(), "-")[0]
}
