package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"ask-web/internal/domain"
)

type fakeDynamo struct {
	putErr       error
	lastPutInput *dynamodb.PutItemInput
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPutInput = in
	return &dynamodb.PutItemOutput{}, f.putErr
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func strValue(t *testing.T, item map[string]types.AttributeValue, key string) string {
	t.Helper()
	v, ok := item[key].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %q is not a string", key)
	return v.Value
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "t")
	require.Error(t, err)

	_, err = New(&fakeDynamo{}, "  ")
	require.Error(t, err)
}

func TestRecordExchange_HappyPath(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	created := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	err := c.RecordExchange(context.Background(), domain.Exchange{
		ID:        "ex-1",
		Question:  "2+2?",
		Answer:    "4",
		Model:     "gpt-3.5-turbo",
		CreatedAt: created,
	})
	require.NoError(t, err)
	require.NotNil(t, db.lastPutInput)
	require.Equal(t, "test-table", *db.lastPutInput.TableName)
	require.Equal(t, "attribute_not_exists(PK) AND attribute_not_exists(SK)", *db.lastPutInput.ConditionExpression)

	item := db.lastPutInput.Item
	require.Equal(t, "EXCH#ex-1", strValue(t, item, "PK"))
	require.Equal(t, "AT#2026-10-17T09:30:00Z", strValue(t, item, "SK"))
	require.Equal(t, "2+2?", strValue(t, item, "question"))
	require.Equal(t, "4", strValue(t, item, "answer"))
	require.Equal(t, "gpt-3.5-turbo", strValue(t, item, "model"))
	require.Equal(t, "2026-10-17T09:30:00Z", strValue(t, item, "createdAt"))

	ttl, ok := item["ttl"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	require.Equal(t, fmt.Sprintf("%d", created.Add(30*24*time.Hour).Unix()), ttl.Value)
}

func TestRecordExchange_DefaultsCreatedAt(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	require.NoError(t, c.RecordExchange(context.Background(), domain.Exchange{ID: "ex-2", Question: "q", Answer: "a"}))
	sk := strValue(t, db.lastPutInput.Item, "SK")
	require.NotEqual(t, "AT#0001-01-01T00:00:00Z", sk)
}

func TestRecordExchange_MissingID(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	err := c.RecordExchange(context.Background(), domain.Exchange{Question: "q"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exchange ID is required")
	require.Nil(t, db.lastPutInput)
}

func TestRecordExchange_PutError(t *testing.T) {
	db := &fakeDynamo{putErr: errors.New("boom")}
	c := mustNewClient(t, db)

	err := c.RecordExchange(context.Background(), domain.Exchange{ID: "ex-3"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "RecordExchange")
	require.ErrorContains(t, err, "boom")
}
