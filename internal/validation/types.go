package validation

// InitiateRequest is the payload for POST /payment.
type InitiateRequest struct {
	Amount  int64  `json:"amount" validate:"required,gt=0"` // currency units; converted to paise downstream
	Name    string `json:"name" validate:"required"`        // payer display name
	Message string `json:"message" validate:"required"`
}

// VerifyRequest is the payload for POST /payment/verify and the webhook.
// Field names follow the gateway's checkout callback wire format.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// CredentialsRequest is the payload for POST /credentials.
type CredentialsRequest struct {
	KeyID     string `json:"keyId" validate:"required"`
	KeySecret string `json:"keySecret" validate:"required"`
}
