package testcase

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/evergreen-ci/utility"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/internal/testutil"
)

// DynamoDBClientTestCase represents a test case for a
// matcha.DynamoDBClient.
type DynamoDBClientTestCase func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient)

// DynamoDBClientTests returns common test cases that a
// matcha.DynamoDBClient should support.
func DynamoDBClientTests() map[string]DynamoDBClientTestCase {
	makeTable := func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient, table string) {
		_, err := c.CreateTable(ctx, &dynamodb.CreateTableInput{
			TableName: utility.ToStringPtr(table),
			KeySchema: []types.KeySchemaElement{
				{
					AttributeName: utility.ToStringPtr("id"),
					KeyType:       types.KeyTypeHash,
				},
			},
			AttributeDefinitions: []types.AttributeDefinition{
				{
					AttributeName: utility.ToStringPtr("id"),
					AttributeType: types.ScalarAttributeTypeS,
				},
			},
			BillingMode: types.BillingModePayPerRequest,
		})
		require.NoError(t, err)
		require.NoError(t, c.WaitForTableActive(ctx, table, 30*time.Second))
	}

	return map[string]DynamoDBClientTestCase{
		"CreateTableAndRoundTripItemSucceed": func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient) {
			table := testutil.NewResourceName(t)
			makeTable(ctx, t, c, table)

			defer cleanupTable(ctx, t, c, table)

			_, err := c.PutItem(ctx, &dynamodb.PutItemInput{
				TableName: utility.ToStringPtr(table),
				Item: map[string]types.AttributeValue{
					"id":    &types.AttributeValueMemberS{Value: "1"},
					"value": &types.AttributeValueMemberS{Value: "hello"},
				},
			})
			require.NoError(t, err)

			out, err := c.GetItem(ctx, &dynamodb.GetItemInput{
				TableName: utility.ToStringPtr(table),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: "1"},
				},
			})
			require.NoError(t, err)
			require.NotZero(t, out)

			value, ok := out.Item["value"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			assert.Equal(t, "hello", value.Value)
		},
		"CreateTableFailsWithDuplicateTable": func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient) {
			table := testutil.NewResourceName(t)
			makeTable(ctx, t, c, table)

			defer cleanupTable(ctx, t, c, table)

			out, err := c.CreateTable(ctx, &dynamodb.CreateTableInput{
				TableName: utility.ToStringPtr(table),
				KeySchema: []types.KeySchemaElement{
					{
						AttributeName: utility.ToStringPtr("id"),
						KeyType:       types.KeyTypeHash,
					},
				},
				AttributeDefinitions: []types.AttributeDefinition{
					{
						AttributeName: utility.ToStringPtr("id"),
						AttributeType: types.ScalarAttributeTypeS,
					},
				},
				BillingMode: types.BillingModePayPerRequest,
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"GetItemReturnsEmptyOutputForMissingItem": func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient) {
			table := testutil.NewResourceName(t)
			makeTable(ctx, t, c, table)

			defer cleanupTable(ctx, t, c, table)

			out, err := c.GetItem(ctx, &dynamodb.GetItemInput{
				TableName: utility.ToStringPtr(table),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: "nonexistent"},
				},
			})
			require.NoError(t, err)
			require.NotZero(t, out)
			assert.Empty(t, out.Item)
		},
		"DescribeTableFailsWithNonexistentTable": func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient) {
			out, err := c.DescribeTable(ctx, &dynamodb.DescribeTableInput{
				TableName: utility.ToStringPtr(testutil.NewResourceName(t)),
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
		"PutItemFailsWithNonexistentTable": func(ctx context.Context, t *testing.T, c matcha.DynamoDBClient) {
			out, err := c.PutItem(ctx, &dynamodb.PutItemInput{
				TableName: utility.ToStringPtr(testutil.NewResourceName(t)),
				Item: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: "1"},
				},
			})
			assert.Error(t, err)
			assert.Zero(t, out)
		},
	}
}

func cleanupTable(ctx context.Context, t *testing.T, c matcha.DynamoDBClient, table string) {
	_, err := c.DeleteTable(ctx, &dynamodb.DeleteTableInput{
		TableName: utility.ToStringPtr(table),
	})
	assert.NoError(t, err)
}
