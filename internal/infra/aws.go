package infra

import (
	"context"
	"errors"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/guregu/dynamo/v2"
)

// Dynamo embeds dynamo.DB for table access. Client() exposes the raw API for
// DescribeTable/CreateTable.
type Dynamo struct {
	*dynamo.DB
}

// NewDynamo creates a DynamoDB client using guregu/dynamo. If endpointURL is non-empty
// (e.g. http://localhost:8001 for DynamoDB Local), the client uses that endpoint.
func NewDynamo(ctx context.Context, region, endpointURL string) (*Dynamo, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	opts := []func(*dynamodb.Options){}
	if endpointURL != "" {
		u, err := url.Parse(endpointURL)
		if err != nil {
			return nil, err
		}
		opts = append(opts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(u.String())
		})
	}
	return &Dynamo{DB: dynamo.New(cfg, opts...)}, nil
}

// EnsureTable creates the single pk/sk table if it does not exist. Used for local
// development and integration tests; production tables are provisioned separately.
func (d *Dynamo) EnsureTable(ctx context.Context, table string) error {
	client := d.Client()
	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}
	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("pk"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("sk"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("pk"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("sk"), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	return err
}
