package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsPublisher wraps a CloudWatch client and a metric namespace.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

// NewMetricsPublisher returns a MetricsPublisher bound to a namespace.
func NewMetricsPublisher(client CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{
		CloudWatch: client,
		Namespace:  namespace,
	}
}

// RecordOutcome emits a count-of-one "Payments" datum tagged with the lifecycle
// outcome (initiated, completed, failed). Callers treat failures as best-effort.
func (p *MetricsPublisher) RecordOutcome(ctx context.Context, outcome string) error {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: &p.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString("Payments"),
				Dimensions: []cwtypes.Dimension{
					{Name: awsString("Outcome"), Value: &outcome},
				},
				Unit:  cwtypes.StandardUnitCount,
				Value: awsFloat64(1),
			},
		},
	}

	_, err := p.CloudWatch.PutMetricData(ctx, input)
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}

// helpers
func awsString(s string) *string    { return &s }
func awsFloat64(f float64) *float64 { return &f }
