package payments

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a small in-memory stand-in for the payments table supporting
// PutItem/GetItem/UpdateItem/Query as the Store uses them.
// NOTE: intentionally minimal and not production-grade.
type mockDynamo struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue // order_id -> item
	pageSize int                                        // Query page size when no Limit given; 0 = all
	failAll  error                                      // when set, every call fails with this error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		items: map[string]map[string]types.AttributeValue{},
	}
}

func avString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	keyAttr := params.Item["order_id"]
	if keyAttr == nil {
		return nil, errors.New("missing order_id in put item")
	}
	k := avString(keyAttr)
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, exists := m.items[k]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	keyAttr := params.Key["order_id"]
	if keyAttr == nil {
		return nil, errors.New("missing order_id key")
	}
	item, ok := m.items[avString(keyAttr)]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}
	keyAttr := params.Key["order_id"]
	if keyAttr == nil {
		return nil, errors.New("missing order_id key")
	}
	item, exists := m.items[avString(keyAttr)]

	// evaluate the two condition shapes the store issues
	if params.ConditionExpression != nil {
		cond := *params.ConditionExpression
		if strings.Contains(cond, "attribute_exists(order_id)") && !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		status := avString(item["status"])
		switch {
		case strings.Contains(cond, "payment_id = :pid"):
			// created, or completed with the same payment id
			samePid := status == StatusCompleted &&
				avString(item["payment_id"]) == avString(params.ExpressionAttributeValues[":pid"])
			if status != StatusCreated && !samePid {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case strings.Contains(cond, ":failed"):
			if status != StatusCreated && status != StatusFailed {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}
	if !exists {
		return nil, errors.New("item not found")
	}

	// naive SET application for the store's update expressions
	if v, ok := params.ExpressionAttributeValues[":completed"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":failed"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":pid"]; ok {
		item["payment_id"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.items[avString(keyAttr)] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

// Query emulates the recipient GSI: key condition on recipient, newest-first
// ordering on created_at, Limit applied BEFORE the filter expression (as
// DynamoDB does), with LastEvaluatedKey paging.
func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll != nil {
		return nil, m.failAll
	}

	recipient := avString(params.ExpressionAttributeValues[":r"])
	var matched []map[string]types.AttributeValue
	for _, item := range m.items {
		if avString(item["recipient"]) == recipient {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		// descending created_at (ScanIndexForward false)
		return avString(matched[i]["created_at"]) > avString(matched[j]["created_at"])
	})

	start := 0
	if len(params.ExclusiveStartKey) > 0 {
		after := avString(params.ExclusiveStartKey["order_id"])
		for i, item := range matched {
			if avString(item["order_id"]) == after {
				start = i + 1
				break
			}
		}
	}
	matched = matched[start:]

	pageSize := len(matched)
	if params.Limit != nil && int(*params.Limit) < pageSize {
		pageSize = int(*params.Limit)
	} else if m.pageSize > 0 && m.pageSize < pageSize {
		pageSize = m.pageSize
	}
	page := matched[:pageSize]

	out := &dyn.QueryOutput{}
	if pageSize < len(matched) && pageSize > 0 {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"order_id": page[pageSize-1]["order_id"],
		}
	}

	wantStatus := avString(params.ExpressionAttributeValues[":completed"])
	for _, item := range page {
		if avString(item["status"]) == wantStatus {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}
