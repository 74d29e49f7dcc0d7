package service

import (
	"context"
	"log"
	"time"

	"github.com/zyvex/zyvex-go/internal/credentials"
	"github.com/zyvex/zyvex-go/internal/gateway"
	"github.com/zyvex/zyvex-go/internal/payments"
)

// PaymentStore is the payments persistence surface the services depend on.
// *payments.Store implements it; tests substitute fakes.
type PaymentStore interface {
	Put(ctx context.Context, rec payments.Record) error
	Get(ctx context.Context, orderID string) (*payments.Record, error)
	MarkCompleted(ctx context.Context, orderID, paymentID string) error
	MarkFailed(ctx context.Context, orderID string) error
	ListCompleted(ctx context.Context, recipient string, limit int32) ([]payments.Record, error)
	TotalsCompleted(ctx context.Context, recipient string) (int64, int64, error)
}

// CredentialStore is the credentials persistence surface.
type CredentialStore interface {
	Upsert(ctx context.Context, userID, keyID, keySecret string) (*credentials.Credentials, error)
	Get(ctx context.Context, userID string) (*credentials.Credentials, error)
}

// MetricsRecorder records payment lifecycle outcomes. Best-effort; failures
// are logged and never affect the request.
type MetricsRecorder interface {
	RecordOutcome(ctx context.Context, outcome string) error
}

// recentLimit caps the dashboard list; totals always cover the full set.
const recentLimit = 10

// Timeouts bounding blocking dependencies. Verification uses the tighter
// bound since a gateway callback should answer quickly.
const (
	storeTimeout  = 5 * time.Second
	verifyTimeout = 3 * time.Second
)

// Service implements order initiation, verification, the dashboard query and
// credential management over injected stores and gateway.
type Service struct {
	payments PaymentStore
	creds    CredentialStore
	gateway  gateway.OrderCreator
	metrics  MetricsRecorder // may be nil
	nowFunc  func() time.Time
}

// New wires a Service. metrics may be nil when no CloudWatch client is configured.
func New(paymentStore PaymentStore, credStore CredentialStore, orderCreator gateway.OrderCreator, metrics MetricsRecorder) *Service {
	return &Service{
		payments: paymentStore,
		creds:    credStore,
		gateway:  orderCreator,
		metrics:  metrics,
		nowFunc:  time.Now,
	}
}

// recordOutcome ticks the outcome metric without letting metric failures
// reach the caller.
func (s *Service) recordOutcome(ctx context.Context, outcome string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordOutcome(ctx, outcome); err != nil {
		log.Printf("[metrics] record outcome=%s failed: %v", outcome, err)
	}
}
