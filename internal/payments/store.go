package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/zyvex/zyvex-go/internal/aws"
)

// recipientIndex is the GSI used for dashboard queries: partition key
// recipient, sort key created_at.
const recipientIndex = "recipient-index"

// ErrDuplicateOrder indicates a record for the order id already exists.
var ErrDuplicateOrder = errors.New("payment record already exists")

// ErrStatusMismatch indicates a finalize attempt conflicted with an existing
// terminal status (e.g. a stale failed verdict arriving after completed).
var ErrStatusMismatch = errors.New("terminal status conflict")

// Store encapsulates operations on the payments table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new payments Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Put inserts a new payment record. The order id must not already exist;
// records are never created twice for the same gateway order.
func (s *Store) Put(ctx context.Context, rec Record) error {
	now := s.nowFunc()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = StatusCreated
	}

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal payment record: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	}

	_, err = s.client.PutItem(ctx, input)
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get fetches a payment record by order id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Record, error) {
	key := map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: orderID},
	}
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal payment record: %w", err)
	}
	return &rec, nil
}

// MarkCompleted finalizes a record as completed and attaches the gateway
// payment id. Allowed from created, or as a re-confirmation of an existing
// completed record carrying the SAME payment id (duplicate webhook delivery).
// Any other current state returns ErrStatusMismatch without writing.
func (s *Store) MarkCompleted(ctx context.Context, orderID, paymentID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :completed, payment_id = :pid, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":completed": &types.AttributeValueMemberS{Value: StatusCompleted},
			":created":   &types.AttributeValueMemberS{Value: StatusCreated},
			":pid":       &types.AttributeValueMemberS{Value: paymentID},
			":ua":        &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(order_id) AND (#s = :created OR (#s = :completed AND payment_id = :pid))"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// MarkFailed finalizes a record as failed. Allowed from created or as a
// repeat of an existing failed verdict; a completed record is never
// regressed (ErrStatusMismatch instead).
func (s *Store) MarkFailed(ctx context.Context, orderID string) error {
	now := s.nowFunc()
	input := &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :failed, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":failed":  &types.AttributeValueMemberS{Value: StatusFailed},
			":created": &types.AttributeValueMemberS{Value: StatusCreated},
			":ua":      &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("attribute_exists(order_id) AND (#s = :created OR #s = :failed)"),
	}

	_, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ListCompleted returns up to limit completed records for a recipient,
// newest first, querying the recipient GSI.
func (s *Store) ListCompleted(ctx context.Context, recipient string, limit int32) ([]Record, error) {
	recs := make([]Record, 0, int(limit))
	var startKey map[string]types.AttributeValue

	for {
		input := s.completedQuery(recipient)
		input.Limit = &limit
		input.ExclusiveStartKey = startKey

		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query payments: %w", err)
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("unmarshal payments page: %w", err)
		}
		for _, rec := range page {
			recs = append(recs, rec)
			if len(recs) == int(limit) {
				return recs, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return recs, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// TotalsCompleted walks the FULL completed set for a recipient and returns
// the all-time count and amount sum, independent of any list cap.
func (s *Store) TotalsCompleted(ctx context.Context, recipient string) (count int64, amount int64, err error) {
	var startKey map[string]types.AttributeValue

	for {
		input := s.completedQuery(recipient)
		input.ExclusiveStartKey = startKey

		out, qerr := s.client.Query(ctx, input)
		if qerr != nil {
			return 0, 0, fmt.Errorf("query payment totals: %w", qerr)
		}

		var page []Record
		if uerr := attributevalue.UnmarshalListOfMaps(out.Items, &page); uerr != nil {
			return 0, 0, fmt.Errorf("unmarshal totals page: %w", uerr)
		}
		for _, rec := range page {
			count++
			amount += rec.Amount
		}

		if len(out.LastEvaluatedKey) == 0 {
			return count, amount, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// completedQuery builds the shared GSI query: recipient partition, newest
// first, filtered to completed records.
func (s *Store) completedQuery(recipient string) *dyn.QueryInput {
	return &dyn.QueryInput{
		TableName:                &s.tableName,
		IndexName:                awsString(recipientIndex),
		KeyConditionExpression:   awsString("recipient = :r"),
		FilterExpression:         awsString("#s = :completed"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":         &types.AttributeValueMemberS{Value: recipient},
			":completed": &types.AttributeValueMemberS{Value: StatusCompleted},
		},
		ScanIndexForward: awsBool(false),
	}
}

func awsString(s string) *string { return &s }
func awsBool(b bool) *bool       { return &b }
