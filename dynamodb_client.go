package matcha

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBClient provides a common interface to interact with a
// DynamoDB-compatible table endpoint and its mock implementation for
// testing. Implementations must handle retrying and backoff.
type DynamoDBClient interface {
	// CreateTable creates a new table.
	CreateTable(ctx context.Context, in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error)
	// DescribeTable gets information about an existing table.
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error)
	// WaitForTableActive blocks until the table exists and is active, or
	// the maximum wait time elapses.
	WaitForTableActive(ctx context.Context, tableName string, maxWait time.Duration) error
	// PutItem writes an item into a table.
	PutItem(ctx context.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	// GetItem retrieves an item from a table by its key.
	GetItem(ctx context.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	// DeleteTable deletes an existing table.
	DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error)
	// Close closes the client and cleans up its resources. Implementations
	// should ensure that this is idempotent.
	Close(ctx context.Context) error
}
