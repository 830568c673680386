package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"ask-web/internal/domain"
)

const (
	pkPrefixExchange = "EXCH#"
	skPrefixAt       = "AT#"
	ttlDuration      = 30 * 24 * time.Hour // 30-day TTL
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client writes answered questions to a DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

func exchangePK(id string) string {
	return pkPrefixExchange + id
}

func exchangeSK(ts time.Time) string {
	return skPrefixAt + ts.UTC().Format(time.RFC3339Nano)
}

// RecordExchange persists one answered question. Each exchange is written once;
// a second write with the same keys is rejected by the condition expression.
func (c *Client) RecordExchange(ctx context.Context, ex domain.Exchange) error {
	if strings.TrimSpace(ex.ID) == "" {
		return errors.New("repository: RecordExchange: exchange ID is required")
	}
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now().UTC()
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                exchangeItem(ex),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: RecordExchange: %w", err)
	}
	return nil
}

func exchangeItem(ex domain.Exchange) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: exchangePK(ex.ID)},
		"SK":         &types.AttributeValueMemberS{Value: exchangeSK(ex.CreatedAt)},
		"exchangeId": &types.AttributeValueMemberS{Value: ex.ID},
		"question":   &types.AttributeValueMemberS{Value: ex.Question},
		"answer":     &types.AttributeValueMemberS{Value: ex.Answer},
		"model":      &types.AttributeValueMemberS{Value: ex.Model},
		"createdAt":  &types.AttributeValueMemberS{Value: ex.CreatedAt.UTC().Format(time.RFC3339)},
		"ttl":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ex.CreatedAt.Add(ttlDuration).Unix())},
	}
}
