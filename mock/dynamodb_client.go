package mock

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
)

// StoredTable is a representation of a table kept in the global table
// service cache. Items are keyed by the string value of their hash key
// attribute.
type StoredTable struct {
	Name        string
	HashKey     string
	Status      types.TableStatus
	BillingMode types.BillingMode
	Items       map[string]map[string]types.AttributeValue
	Created     time.Time
}

func newStoredTable(in *dynamodb.CreateTableInput, ts time.Time) (*StoredTable, error) {
	if len(in.KeySchema) == 0 {
		return nil, errors.New("missing key schema")
	}
	if len(in.AttributeDefinitions) == 0 {
		return nil, errors.New("missing attribute definitions")
	}

	t := StoredTable{
		Name:        utility.FromStringPtr(in.TableName),
		HashKey:     utility.FromStringPtr(in.KeySchema[0].AttributeName),
		Status:      types.TableStatusActive,
		BillingMode: in.BillingMode,
		Items:       map[string]map[string]types.AttributeValue{},
		Created:     ts,
	}
	return &t, nil
}

func exportTableDescription(t *StoredTable) *types.TableDescription {
	return &types.TableDescription{
		TableName:        utility.ToStringPtr(t.Name),
		TableStatus:      t.Status,
		ItemCount:        aws.Int64(int64(len(t.Items))),
		CreationDateTime: utility.ToTimePtr(t.Created),
	}
}

// GlobalTableService is a global storage cache that provides a simplified
// in-memory implementation of a key-value table service. This can be used
// indirectly with the DynamoDBClient to access and modify tables, or used
// directly.
var GlobalTableService map[string]*StoredTable

func init() {
	ResetGlobalTableService()
}

// ResetGlobalTableService resets the global fake table service cache to
// an initialized but clean state.
func ResetGlobalTableService() {
	GlobalTableService = map[string]*StoredTable{}
}

// DynamoDBClient provides a mock implementation of a
// matcha.DynamoDBClient. This makes it possible to introspect on inputs
// to the client and control the client's output. It provides some default
// implementations where possible. By default, it will issue the API calls
// to the fake GlobalTableService.
type DynamoDBClient struct {
	CreateTableInput  *dynamodb.CreateTableInput
	CreateTableOutput *dynamodb.CreateTableOutput
	CreateTableError  error

	DescribeTableInput  *dynamodb.DescribeTableInput
	DescribeTableOutput *dynamodb.DescribeTableOutput
	DescribeTableError  error

	WaitForTableActiveError error

	PutItemInput  *dynamodb.PutItemInput
	PutItemOutput *dynamodb.PutItemOutput
	PutItemError  error

	GetItemInput  *dynamodb.GetItemInput
	GetItemOutput *dynamodb.GetItemOutput
	GetItemError  error

	DeleteTableInput  *dynamodb.DeleteTableInput
	DeleteTableOutput *dynamodb.DeleteTableOutput
	DeleteTableError  error

	CloseError error
}

// CreateTable saves the input and creates the table in the global table
// service cache. Tables become active immediately. The mock output can be
// customized.
func (c *DynamoDBClient) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput) (*dynamodb.CreateTableOutput, error) {
	c.CreateTableInput = in

	if c.CreateTableOutput != nil || c.CreateTableError != nil {
		return c.CreateTableOutput, c.CreateTableError
	}

	name := utility.FromStringPtr(in.TableName)
	if name == "" {
		return nil, errors.New("missing table name")
	}
	if _, ok := GlobalTableService[name]; ok {
		return nil, &types.ResourceInUseException{}
	}

	t, err := newStoredTable(in, time.Now())
	if err != nil {
		return nil, err
	}
	GlobalTableService[name] = t

	return &dynamodb.CreateTableOutput{
		TableDescription: exportTableDescription(t),
	}, nil
}

// DescribeTable saves the input and returns the table description from
// the global table service cache. The mock output can be customized.
func (c *DynamoDBClient) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput) (*dynamodb.DescribeTableOutput, error) {
	c.DescribeTableInput = in

	if c.DescribeTableOutput != nil || c.DescribeTableError != nil {
		return c.DescribeTableOutput, c.DescribeTableError
	}

	t, ok := GlobalTableService[utility.FromStringPtr(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	return &dynamodb.DescribeTableOutput{
		Table: exportTableDescription(t),
	}, nil
}

// WaitForTableActive checks that the table exists in the global table
// service cache, where tables are always active. The mock error can be
// customized.
func (c *DynamoDBClient) WaitForTableActive(ctx context.Context, tableName string, maxWait time.Duration) error {
	if c.WaitForTableActiveError != nil {
		return c.WaitForTableActiveError
	}

	if _, ok := GlobalTableService[tableName]; !ok {
		return errors.Errorf("table '%s' did not become active", tableName)
	}

	return nil
}

// PutItem saves the input and writes the item into the global table
// service cache. The mock output can be customized.
func (c *DynamoDBClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	c.PutItemInput = in

	if c.PutItemOutput != nil || c.PutItemError != nil {
		return c.PutItemOutput, c.PutItemError
	}

	t, ok := GlobalTableService[utility.FromStringPtr(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	id, err := hashKeyValue(in.Item, t.HashKey)
	if err != nil {
		return nil, err
	}
	t.Items[id] = in.Item

	return &dynamodb.PutItemOutput{}, nil
}

// GetItem saves the input and returns the item from the global table
// service cache. Like the real service, a missing item yields an empty
// output rather than an error. The mock output can be customized.
func (c *DynamoDBClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	c.GetItemInput = in

	if c.GetItemOutput != nil || c.GetItemError != nil {
		return c.GetItemOutput, c.GetItemError
	}

	t, ok := GlobalTableService[utility.FromStringPtr(in.TableName)]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	id, err := hashKeyValue(in.Key, t.HashKey)
	if err != nil {
		return nil, err
	}

	item, ok := t.Items[id]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}

	return &dynamodb.GetItemOutput{Item: item}, nil
}

// DeleteTable saves the input and deletes the table from the global table
// service cache. The mock output can be customized.
func (c *DynamoDBClient) DeleteTable(ctx context.Context, in *dynamodb.DeleteTableInput) (*dynamodb.DeleteTableOutput, error) {
	c.DeleteTableInput = in

	if c.DeleteTableOutput != nil || c.DeleteTableError != nil {
		return c.DeleteTableOutput, c.DeleteTableError
	}

	name := utility.FromStringPtr(in.TableName)
	t, ok := GlobalTableService[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{}
	}

	delete(GlobalTableService, name)

	return &dynamodb.DeleteTableOutput{
		TableDescription: exportTableDescription(t),
	}, nil
}

// Close closes the mock client. The mock output can be customized. By
// default, it is a no-op that returns no error.
func (c *DynamoDBClient) Close(ctx context.Context) error {
	return c.CloseError
}

func hashKeyValue(attrs map[string]types.AttributeValue, hashKey string) (string, error) {
	attr, ok := attrs[hashKey]
	if !ok {
		return "", errors.Errorf("missing hash key attribute '%s'", hashKey)
	}
	s, ok := attr.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.Errorf("hash key attribute '%s' must be a string", hashKey)
	}
	return s.Value, nil
}
