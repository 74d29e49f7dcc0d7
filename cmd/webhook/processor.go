package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	internalaws "github.com/zyvex/zyvex-go/internal/aws"
	"github.com/zyvex/zyvex-go/internal/credentials"
	"github.com/zyvex/zyvex-go/internal/payments"
	"github.com/zyvex/zyvex-go/internal/service"
	"github.com/zyvex/zyvex-go/internal/validation"
)

// Processor handles gateway webhook callbacks delivered through API Gateway
// and runs the same verification core as the client-facing endpoint.
type Processor struct {
	svc *service.Service
}

// NewProcessor creates a webhook processor with AWS clients injected.
func NewProcessor(clients *internalaws.AWSClients, paymentsTable, credentialsTable string) *Processor {
	var metrics service.MetricsRecorder
	if clients.CloudWatch != nil {
		metrics = internalaws.NewMetricsPublisher(clients.CloudWatch, "Zyvex/Payments")
	}

	svc := service.New(
		payments.NewStore(clients.DynamoDB, paymentsTable),
		credentials.NewStore(clients.DynamoDB, credentialsTable),
		nil, // webhook never creates orders
		metrics,
	)
	return &Processor{svc: svc}
}

func newProcessorWithService(svc *service.Service) *Processor {
	return &Processor{svc: svc}
}

// Handle verifies one gateway callback and answers synchronously with the
// verdict. Delivery may repeat in any order; verification is idempotent.
func (p *Processor) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var body validation.VerifyRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		log.Printf("[webhook] invalid body: %v", err)
		return envelope(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid request body",
		}), nil
	}

	log.Printf("[webhook] received order=%s payment=%s", body.OrderID, body.PaymentID)

	res, serr := p.svc.VerifyPayment(ctx, body)
	if serr != nil {
		return envelope(statusFor(serr.Code), map[string]interface{}{
			"success": false,
			"code":    serr.Code,
			"error":   serr.Message,
		}), nil
	}

	payload := map[string]interface{}{
		"success": true,
		"message": res.Message,
	}
	if res.Payment != nil {
		payload["payment"] = res.Payment
	}
	return envelope(http.StatusOK, payload), nil
}

func envelope(status int, payload map[string]interface{}) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(payload)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func statusFor(code service.ErrorCode) int {
	switch code {
	case service.CodeValidation, service.CodeSignatureMismatch:
		return http.StatusBadRequest
	case service.CodeNotConfigured:
		return http.StatusNotFound
	case service.CodeDependencyTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
