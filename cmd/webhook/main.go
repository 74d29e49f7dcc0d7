package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	internalaws "github.com/zyvex/zyvex-go/internal/aws"
)

func main() {
	clients, err := internalaws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(clients, os.Getenv("PAYMENTS_TABLE"), os.Getenv("CREDENTIALS_TABLE"))

	// If RUN_LOCAL=true, simulate a single webhook delivery for local testing.
	if os.Getenv("RUN_LOCAL") == "true" {
		body := os.Getenv("LOCAL_WEBHOOK_BODY")
		if body == "" {
			body = `{"razorpay_order_id":"order_local1","razorpay_payment_id":"pay_local1","razorpay_signature":"sig"}`
		}
		resp, err := p.Handle(context.Background(), events.APIGatewayProxyRequest{Body: body})
		if err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		log.Printf("local response: status=%d body=%s", resp.StatusCode, resp.Body)
		return
	}

	lambda.Start(p.Handle)
}
