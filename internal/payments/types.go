package payments

import "time"

// Payment statuses. A record starts as created and is finalized exactly once.
const (
	StatusCreated   = "created"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is the item stored in the payments DynamoDB table, one per attempted
// payment, keyed by the gateway-issued order id.
type Record struct {
	OrderID   string    `dynamodbav:"order_id" json:"orderId"` // PK, assigned by the gateway
	PaymentID string    `dynamodbav:"payment_id,omitempty" json:"paymentId,omitempty"`
	Name      string    `dynamodbav:"name" json:"name"`     // payer display name
	Amount    int64     `dynamodbav:"amount" json:"amount"` // smallest currency unit (paise)
	Message   string    `dynamodbav:"message" json:"message"`
	Recipient string    `dynamodbav:"recipient" json:"recipient"` // creator identity
	Status    string    `dynamodbav:"status" json:"status"`       // created | completed | failed
	CreatedAt time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}
