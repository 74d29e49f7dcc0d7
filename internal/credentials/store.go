package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/zyvex/zyvex-go/internal/aws"
)

// Credentials is the per-creator Razorpay key pair stored in the
// razorpay_credentials table, keyed by creator identity.
//
// KeySecret is only ever read by order initiation and signature verification;
// it must never appear in a response payload.
type Credentials struct {
	UserID    string    `dynamodbav:"user_id"` // PK
	KeyID     string    `dynamodbav:"key_id"`
	KeySecret string    `dynamodbav:"key_secret"`
	CreatedAt time.Time `dynamodbav:"created_at"`
}

// Store encapsulates operations on the credentials table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new credentials Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Upsert writes the creator's key pair, overwriting any previous pair.
// Submitting twice never duplicates.
func (s *Store) Upsert(ctx context.Context, userID, keyID, keySecret string) (*Credentials, error) {
	creds := Credentials{
		UserID:    userID,
		KeyID:     keyID,
		KeySecret: keySecret,
		CreatedAt: s.nowFunc(),
	}

	item, err := attributevalue.MarshalMap(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("put item: %w", err)
	}
	return &creds, nil
}

// Get fetches a creator's credentials. Returns (nil, nil) if not configured.
func (s *Store) Get(ctx context.Context, userID string) (*Credentials, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var creds Credentials
	if err := attributevalue.UnmarshalMap(out.Item, &creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials: %w", err)
	}
	return &creds, nil
}
