package persistent

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// dynamoAPI is the subset of *dynamodb.Client used by ImageDynamoRepo.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type imageItem struct {
	ImageID         string   `dynamodbav:"image_id"`
	OwnerID         string   `dynamodbav:"owner_id"`
	Filename        string   `dynamodbav:"filename"`
	StorageKey      string   `dynamodbav:"storage_key"`
	UploadTimestamp string   `dynamodbav:"upload_timestamp"`
	Tags            []string `dynamodbav:"tags"`
	Description     string   `dynamodbav:"description"`
}

func toImageItem(image *entity.Image) imageItem {
	tags := image.Tags
	if tags == nil {
		tags = []string{}
	}

	return imageItem{
		ImageID:         image.ID,
		OwnerID:         image.OwnerID,
		Filename:        image.Filename,
		StorageKey:      image.StorageKey,
		UploadTimestamp: image.UploadTimestamp,
		Tags:            tags,
		Description:     image.Description,
	}
}

func (it imageItem) toEntity() *entity.Image {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}

	return &entity.Image{
		ID:              it.ImageID,
		OwnerID:         it.OwnerID,
		Filename:        it.Filename,
		StorageKey:      it.StorageKey,
		UploadTimestamp: it.UploadTimestamp,
		Tags:            tags,
		Description:     it.Description,
	}
}

type ImageDynamoRepo struct {
	client     dynamoAPI
	table      string
	ownerIndex string
}

func NewImageDynamoRepo(client *dynamodb.Client, table, ownerIndex string) *ImageDynamoRepo {
	return &ImageDynamoRepo{client: client, table: table, ownerIndex: ownerIndex}
}

func (r *ImageDynamoRepo) Put(ctx context.Context, image *entity.Image) error {
	item, err := attributevalue.MarshalMap(toImageItem(image))
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Put - attributevalue.MarshalMap: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Put - r.client.PutItem: %w", err)
	}

	return nil
}

func (r *ImageDynamoRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       imageKey(id),
	})
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID - r.client.GetItem: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID: %w", errs.ErrRecordNotFound)
	}

	var item imageItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - GetByID - attributevalue.UnmarshalMap: %w", err)
	}

	return item.toEntity(), nil
}

// Delete succeeds for missing ids; DeleteItem does not distinguish them.
func (r *ImageDynamoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       imageKey(id),
	})
	if err != nil {
		return fmt.Errorf("ImageDynamoRepo - Delete - r.client.DeleteItem: %w", err)
	}

	return nil
}

func (r *ImageDynamoRepo) QueryByOwner(
	ctx context.Context,
	ownerID string,
	tr dto.TimestampRange,
	limit int,
) ([]*entity.Image, error) {
	cond, values := ownerKeyCondition(ownerID, tr)

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.ownerIndex),
		KeyConditionExpression:    aws.String(cond),
		ExpressionAttributeValues: values,
		ScanIndexForward:          aws.Bool(true),
		Limit:                     aws.Int32(int32(limit)), //nolint:gosec // limit is validated upstream
	})
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - QueryByOwner - r.client.Query: %w", err)
	}

	images, err := unmarshalImages(out.Items)
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - QueryByOwner: %w", err)
	}

	return images, nil
}

// Scan is a single unindexed page of at most limit items.
func (r *ImageDynamoRepo) Scan(ctx context.Context, limit int) ([]*entity.Image, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.table),
		Limit:     aws.Int32(int32(limit)), //nolint:gosec // limit is validated upstream
	})
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - Scan - r.client.Scan: %w", err)
	}

	images, err := unmarshalImages(out.Items)
	if err != nil {
		return nil, fmt.Errorf("ImageDynamoRepo - Scan: %w", err)
	}

	return images, nil
}

func imageKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"image_id": &types.AttributeValueMemberS{Value: id},
	}
}

// ownerKeyCondition builds the key condition on the owner index: the owner
// partition, optionally bounded on upload_timestamp from either side.
func ownerKeyCondition(ownerID string, tr dto.TimestampRange) (string, map[string]types.AttributeValue) {
	cond := "owner_id = :owner_id"
	values := map[string]types.AttributeValue{
		":owner_id": &types.AttributeValueMemberS{Value: ownerID},
	}

	switch {
	case tr.From != "" && tr.To != "":
		cond += " AND upload_timestamp BETWEEN :date_from AND :date_to"
		values[":date_from"] = &types.AttributeValueMemberS{Value: tr.From}
		values[":date_to"] = &types.AttributeValueMemberS{Value: tr.To}
	case tr.From != "":
		cond += " AND upload_timestamp >= :date_from"
		values[":date_from"] = &types.AttributeValueMemberS{Value: tr.From}
	case tr.To != "":
		cond += " AND upload_timestamp <= :date_to"
		values[":date_to"] = &types.AttributeValueMemberS{Value: tr.To}
	}

	return cond, values
}

func unmarshalImages(items []map[string]types.AttributeValue) ([]*entity.Image, error) {
	var decoded []imageItem
	if err := attributevalue.UnmarshalListOfMaps(items, &decoded); err != nil {
		return nil, fmt.Errorf("attributevalue.UnmarshalListOfMaps: %w", err)
	}

	images := make([]*entity.Image, 0, len(decoded))
	for _, it := range decoded {
		images = append(images, it.toEntity())
	}

	return images, nil
}
