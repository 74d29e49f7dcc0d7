package service

import (
	"context"
	"errors"
	"log"

	"github.com/zyvex/zyvex-go/internal/gateway"
	"github.com/zyvex/zyvex-go/internal/payments"
	"github.com/zyvex/zyvex-go/internal/validation"
)

// VerifyResult is the success half of a verification: either the finalized
// record, or a soft-success message when local bookkeeping has no record.
type VerifyResult struct {
	Message string           `json:"message"`
	Payment *payments.Record `json:"payment,omitempty"`
}

// VerifyPayment reconciles a checkout notification against the stored record.
//
// The recipient's secret is resolved from the RECORD, never from the request,
// so a forged payload cannot point verification at attacker-controlled keys.
// An unknown order id is a soft success: the gateway-side payment is valid
// even when bookkeeping lost the record. Duplicate deliveries re-confirm the
// terminal status; a stale conflicting verdict never flips it.
func (s *Service) VerifyPayment(ctx context.Context, req validation.VerifyRequest) (*VerifyResult, *Error) {
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, &Error{Code: CodeValidation, Message: "Missing required parameters"}
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	rec, err := s.payments.Get(vctx, req.OrderID)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}
	if rec == nil {
		log.Printf("[verify] order=%s has no local record", req.OrderID)
		return &VerifyResult{Message: "Payment verified but not found in database"}, nil
	}

	creds, err := s.creds.Get(vctx, rec.Recipient)
	if err != nil {
		return nil, dependencyError(err, CodePersistence, "Database connection failed")
	}
	if creds == nil {
		return nil, &Error{Code: CodeNotConfigured, Message: "Razorpay credentials not found for recipient"}
	}

	if !gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature, creds.KeySecret) {
		return nil, s.finalizeFailed(ctx, req.OrderID)
	}

	fctx, fcancel := context.WithTimeout(ctx, verifyTimeout)
	defer fcancel()
	if err := s.payments.MarkCompleted(fctx, req.OrderID, req.PaymentID); err != nil {
		if errors.Is(err, payments.ErrStatusMismatch) {
			// already finalized with a different outcome; leave it alone
			return nil, &Error{Code: CodePersistence, Message: "Payment already finalized with a conflicting outcome"}
		}
		// a definitive verdict exists; losing it is not acceptable
		return nil, dependencyError(err, CodePersistence, "Error saving payment")
	}

	rec.PaymentID = req.PaymentID
	rec.Status = payments.StatusCompleted

	s.recordOutcome(ctx, "completed")
	return &VerifyResult{Message: "Payment verified successfully", Payment: rec}, nil
}

// finalizeFailed records a signature mismatch. A completed record is never
// regressed; the mismatch is still reported to the caller.
func (s *Service) finalizeFailed(ctx context.Context, orderID string) *Error {
	fctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	if err := s.payments.MarkFailed(fctx, orderID); err != nil {
		if errors.Is(err, payments.ErrStatusMismatch) {
			log.Printf("[verify] stale failed verdict for completed order=%s ignored", orderID)
		} else {
			return dependencyError(err, CodePersistence, "Error saving failed payment")
		}
	}

	s.recordOutcome(ctx, "failed")
	return &Error{Code: CodeSignatureMismatch, Message: "Payment verification failed"}
}
