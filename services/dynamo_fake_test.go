package services_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pawhome_server/models"
	"pawhome_server/services"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamo is an in-memory DynamoAPI good enough for the expressions the
// services actually issue: single equalities plus the one OR and one AND
// form used by the chat scans.
type fakeDynamo struct {
	mu     sync.Mutex
	tables map[string][]map[string]types.AttributeValue

	// failWith, when set, is returned by every operation. Used to simulate
	// store outages and deadline expiry.
	failWith error

	// calls counts operations per table, letting tests assert an endpoint
	// never touched the message log.
	calls map[string]int
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{
		tables: make(map[string][]map[string]types.AttributeValue),
		calls:  make(map[string]int),
	}
}

func (f *fakeDynamo) keyOf(tableName string, item map[string]types.AttributeValue) string {
	switch tableName {
	case models.SessionsTable:
		return attrString(item, "token")
	case models.UsersTable:
		return attrString(item, "userId")
	case models.ChatMessagesTable:
		return attrString(item, "conversationId") + "|" + attrString(item, "messageId")
	default:
		return fmt.Sprintf("%v", item)
	}
}

func attrString(item map[string]types.AttributeValue, field string) string {
	if v, ok := item[field].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(_ context.Context, tableName string, item interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tableName]++
	if f.failWith != nil {
		return f.failWith
	}

	marshaled, err := attributevalue.MarshalMap(item)
	if err != nil {
		return err
	}

	key := f.keyOf(tableName, marshaled)
	for i, existing := range f.tables[tableName] {
		if f.keyOf(tableName, existing) == key {
			f.tables[tableName][i] = marshaled
			return nil
		}
	}
	f.tables[tableName] = append(f.tables[tableName], marshaled)
	return nil
}

func (f *fakeDynamo) GetItem(_ context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tableName]++
	if f.failWith != nil {
		return nil, f.failWith
	}

	for _, item := range f.tables[tableName] {
		if matchesKey(item, key) {
			return item, nil
		}
	}
	return nil, services.ErrNotFound
}

func (f *fakeDynamo) DeleteItem(_ context.Context, tableName string, key map[string]types.AttributeValue) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tableName]++
	if f.failWith != nil {
		return f.failWith
	}

	items := f.tables[tableName]
	for i, item := range items {
		if matchesKey(item, key) {
			f.tables[tableName] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeDynamo) QueryItems(_ context.Context, tableName, keyConditionExpression string,
	values map[string]types.AttributeValue, _ map[string]string, limit int32) ([]map[string]types.AttributeValue, error) {
	return f.filter(tableName, keyConditionExpression, values, limit)
}

func (f *fakeDynamo) ScanItems(_ context.Context, tableName, filterExpression string,
	values map[string]types.AttributeValue, _ map[string]string) ([]map[string]types.AttributeValue, error) {
	return f.filter(tableName, filterExpression, values, 0)
}

func (f *fakeDynamo) filter(tableName, expression string,
	values map[string]types.AttributeValue, limit int32) ([]map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tableName]++
	if f.failWith != nil {
		return nil, f.failWith
	}

	var results []map[string]types.AttributeValue
	for _, item := range f.tables[tableName] {
		if evalExpression(expression, item, values) {
			results = append(results, item)
			if limit > 0 && int32(len(results)) == limit {
				break
			}
		}
	}
	return results, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, tableName, updateExpression string,
	key, values map[string]types.AttributeValue, _ map[string]string) (map[string]types.AttributeValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tableName]++
	if f.failWith != nil {
		return nil, f.failWith
	}

	field, placeholder, ok := parseSetExpression(updateExpression)
	if !ok {
		return nil, fmt.Errorf("fake cannot interpret update expression %q", updateExpression)
	}

	for _, item := range f.tables[tableName] {
		if matchesKey(item, key) {
			item[field] = values[placeholder]
			return item, nil
		}
	}
	return map[string]types.AttributeValue{}, nil
}

func matchesKey(item, key map[string]types.AttributeValue) bool {
	for field, want := range key {
		if !attrEqual(item[field], want) {
			return false
		}
	}
	return true
}

// evalExpression supports "a = :x", "a = :x OR b = :y" and
// "a = :x AND b = :y" — the full set the services use.
func evalExpression(expression string, item, values map[string]types.AttributeValue) bool {
	for _, orClause := range strings.Split(expression, " OR ") {
		all := true
		for _, cond := range strings.Split(orClause, " AND ") {
			parts := strings.Split(strings.TrimSpace(cond), " = ")
			if len(parts) != 2 {
				all = false
				break
			}
			if !attrEqual(item[parts[0]], values[parts[1]]) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func parseSetExpression(expression string) (field, placeholder string, ok bool) {
	if !strings.HasPrefix(expression, "SET ") {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(expression, "SET "), " = ")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func attrEqual(a, b types.AttributeValue) bool {
	switch av := a.(type) {
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		return ok && av.Value == bv.Value
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		return ok && av.Value == bv.Value
	default:
		return false
	}
}
