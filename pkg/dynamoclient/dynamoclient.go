package dynamoclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultWaitTimeout  = 2 * time.Minute
)

type DynamoClient struct {
	connAttempts int
	connTimeout  time.Duration

	endpoint  string
	region    string
	accessKey string
	secretKey string

	Client *dynamodb.Client
}

func New(ctx context.Context, endpoint, region string, opts ...Option) (*DynamoClient, error) {
	dc := &DynamoClient{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		endpoint:     endpoint,
		region:       region,
	}

	for _, opt := range opts {
		opt(dc)
	}

	var err error
	for dc.connAttempts > 0 {
		err = dc.connect(ctx)
		if err == nil {
			break
		}

		log.Printf("DynamoDB is trying to connect, attempts left: %d", dc.connAttempts)

		time.Sleep(dc.connTimeout)

		dc.connAttempts--
	}

	if err != nil {
		return nil, fmt.Errorf("DynamoClient - New - connAttempts == 0: %w", err)
	}

	return dc, nil
}

func (d *DynamoClient) connect(ctx context.Context) error {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(d.region)}
	if d.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(d.accessKey, d.secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return fmt.Errorf("DynamoClient - config.LoadDefaultConfig: %w", err)
	}

	d.Client = dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if d.endpoint != "" {
			o.BaseEndpoint = aws.String(d.endpoint)
		}
	})

	_, err = d.Client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	if err != nil {
		return fmt.Errorf("DynamoClient - d.Client.ListTables: %w", err)
	}

	return nil
}

// EnsureTable creates the images table keyed by image_id with a global
// secondary index on (owner_id, upload_timestamp), and waits until it is
// active. An existing table is left untouched.
func (d *DynamoClient) EnsureTable(ctx context.Context, table, ownerIndex string) error {
	_, err := d.Client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("image_id"), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("image_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("owner_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("upload_timestamp"), AttributeType: types.ScalarAttributeTypeS},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(ownerIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("owner_id"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("upload_timestamp"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	if err != nil {
		var inUse *types.ResourceInUseException
		if errors.As(err, &inUse) {
			return nil
		}

		return fmt.Errorf("DynamoClient - EnsureTable - d.Client.CreateTable: %w", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(d.Client)
	err = waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)}, _defaultWaitTimeout)
	if err != nil {
		return fmt.Errorf("DynamoClient - EnsureTable - waiter.Wait: %w", err)
	}

	log.Printf("DynamoDB table created: %s", table)

	return nil
}
