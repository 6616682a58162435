package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/verdant-ci/matcha"
)

// TableOptions configure a TableProbe.
type TableOptions struct {
	// Table is the name of the table the probe creates and writes to.
	Table string
	// ItemID is the hash key value of the probe's item.
	ItemID string
	// ItemValue is the payload attribute of the probe's item.
	ItemValue string
	// MaxTableWait is the longest the probe waits for the created table to
	// become active.
	MaxTableWait time.Duration
}

// Validate checks that the required fields are given and sets defaults
// for unspecified options.
func (o *TableOptions) Validate() error {
	catcher := grip.NewBasicCatcher()
	catcher.NewWhen(o.Table == "", "must provide a table name")

	if catcher.HasErrors() {
		return catcher.Resolve()
	}

	if o.ItemID == "" {
		o.ItemID = "1"
	}
	if o.ItemValue == "" {
		o.ItemValue = "hello from matcha"
	}
	if o.MaxTableWait <= 0 {
		o.MaxTableWait = 30 * time.Second
	}

	return nil
}

// tableItem is the document the probe round trips through the table.
type tableItem struct {
	ID    string `dynamodbav:"id"`
	Value string `dynamodbav:"value"`
}

// TableProbe verifies that the emulator can create an on-demand table,
// report it active, and round trip an item through it.
type TableProbe struct {
	client matcha.DynamoDBClient
	opts   TableOptions
}

// NewTableProbe creates a probe that verifies key-value table round trips
// through the given client.
func NewTableProbe(c matcha.DynamoDBClient, opts TableOptions) (*TableProbe, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	return &TableProbe{client: c, opts: opts}, nil
}

// Name returns the probe's identifier.
func (p *TableProbe) Name() string {
	return "dynamodb-table-round-trip"
}

// Check creates the table, waits for it to become active, writes an item,
// and reads the same item back. A table left over from a previous run is
// reused rather than treated as a failure.
func (p *TableProbe) Check(ctx context.Context) error {
	if _, err := p.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: utility.ToStringPtr(p.opts.Table),
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
	}); err != nil && !isTableInUse(err) {
		return errors.Wrapf(err, "creating table '%s'", p.opts.Table)
	}

	if err := p.client.WaitForTableActive(ctx, p.opts.Table, p.opts.MaxTableWait); err != nil {
		return errors.Wrap(err, "waiting for table")
	}

	item, err := attributevalue.MarshalMap(tableItem{
		ID:    p.opts.ItemID,
		Value: p.opts.ItemValue,
	})
	if err != nil {
		return errors.Wrap(err, "marshalling item")
	}

	if _, err := p.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: utility.ToStringPtr(p.opts.Table),
		Item:      item,
	}); err != nil {
		return errors.Wrap(err, "putting item")
	}

	out, err := p.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: utility.ToStringPtr(p.opts.Table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: p.opts.ItemID},
		},
	})
	if err != nil {
		return errors.Wrap(err, "getting item")
	}
	if len(out.Item) == 0 {
		return errors.Errorf("item '%s' was written but not found", p.opts.ItemID)
	}

	var retrieved tableItem
	if err := attributevalue.UnmarshalMap(out.Item, &retrieved); err != nil {
		return errors.Wrap(err, "unmarshalling item")
	}

	if retrieved.Value != p.opts.ItemValue {
		return errors.Errorf("item round trip mismatch: stored value '%s' but read back '%s'", p.opts.ItemValue, retrieved.Value)
	}

	return nil
}

func isTableInUse(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceInUseException"
	}
	return false
}
