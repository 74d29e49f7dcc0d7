package service

import (
	"context"

	"github.com/zyvex/zyvex-go/internal/auth"
	"github.com/zyvex/zyvex-go/internal/payments"
)

// PaymentsResult is the dashboard payload: the recent completed payments plus
// totals computed over the creator's ENTIRE completed set.
type PaymentsResult struct {
	Payments    []payments.Record `json:"payments"`
	TotalCount  int64             `json:"totalCount"`
	TotalAmount int64             `json:"totalAmount"`
}

// Payments returns the caller's completed payments, newest first and capped,
// alongside all-time totals so the dashboard never needs the full history.
func (s *Service) Payments(ctx context.Context, user *auth.User) (*PaymentsResult, *Error) {
	if user == nil || user.ID == "" {
		return nil, &Error{Code: CodeAuth, Message: "User not authenticated"}
	}

	qctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	count, amount, err := s.payments.TotalsCompleted(qctx, user.ID)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}

	recent, err := s.payments.ListCompleted(qctx, user.ID, recentLimit)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}

	return &PaymentsResult{
		Payments:    recent,
		TotalCount:  count,
		TotalAmount: amount,
	}, nil
}
