package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdant-ci/matcha"
	"github.com/verdant-ci/matcha/mock"
)

func TestTableOptions(t *testing.T) {
	t.Run("FailsWithoutTable", func(t *testing.T) {
		opts := TableOptions{}
		assert.Error(t, opts.Validate())
	})
	t.Run("SetsDefaults", func(t *testing.T) {
		opts := TableOptions{Table: "table"}
		require.NoError(t, opts.Validate())
		assert.Equal(t, "1", opts.ItemID)
		assert.NotEmpty(t, opts.ItemValue)
		assert.Equal(t, 30*time.Second, opts.MaxTableWait)
	})
	t.Run("KeepsGivenValues", func(t *testing.T) {
		opts := TableOptions{
			Table:        "table",
			ItemID:       "42",
			ItemValue:    "custom",
			MaxTableWait: time.Minute,
		}
		require.NoError(t, opts.Validate())
		assert.Equal(t, "42", opts.ItemID)
		assert.Equal(t, "custom", opts.ItemValue)
		assert.Equal(t, time.Minute, opts.MaxTableWait)
	})
}

func TestTableProbe(t *testing.T) {
	assert.Implements(t, (*matcha.Probe)(nil), &TableProbe{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("FailsWithInvalidOptions", func(t *testing.T) {
		p, err := NewTableProbe(&mock.DynamoDBClient{}, TableOptions{})
		assert.Error(t, err)
		assert.Zero(t, p)
	})

	for tName, tCase := range map[string]func(ctx context.Context, t *testing.T, c *mock.DynamoDBClient){
		"SucceedsAndRoundTripsItem": func(ctx context.Context, t *testing.T, c *mock.DynamoDBClient) {
			p, err := NewTableProbe(c, TableOptions{Table: "probe-table"})
			require.NoError(t, err)

			require.NoError(t, p.Check(ctx))

			table, ok := mock.GlobalTableService["probe-table"]
			require.True(t, ok)
			item, ok := table.Items["1"]
			require.True(t, ok)
			value, ok := item["value"].(*types.AttributeValueMemberS)
			require.True(t, ok)
			assert.Equal(t, "hello from matcha", value.Value)
		},
		"SucceedsWhenTableAlreadyExists": func(ctx context.Context, t *testing.T, c *mock.DynamoDBClient) {
			p, err := NewTableProbe(c, TableOptions{Table: "probe-table"})
			require.NoError(t, err)

			require.NoError(t, p.Check(ctx))
			assert.NoError(t, p.Check(ctx))
		},
		"FailsWhenTableNeverBecomesActive": func(ctx context.Context, t *testing.T, c *mock.DynamoDBClient) {
			c.WaitForTableActiveError = errors.New("table stuck in creating")

			p, err := NewTableProbe(c, TableOptions{Table: "probe-table"})
			require.NoError(t, err)

			assert.Error(t, p.Check(ctx))
		},
		"FailsWhenItemCannotBeRead": func(ctx context.Context, t *testing.T, c *mock.DynamoDBClient) {
			c.GetItemError = errors.New("table service is down")

			p, err := NewTableProbe(c, TableOptions{Table: "probe-table"})
			require.NoError(t, err)

			assert.Error(t, p.Check(ctx))
		},
	} {
		t.Run(tName, func(t *testing.T) {
			tctx, tcancel := context.WithTimeout(ctx, 10*time.Second)
			defer tcancel()

			mock.ResetGlobalTableService()

			tCase(tctx, t, &mock.DynamoDBClient{})
		})
	}
}
