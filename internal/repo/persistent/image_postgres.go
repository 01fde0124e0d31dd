package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/pkg/postgres"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	imagesTable = "images"

	// Columns
	imageIDColumn         = "image_id"
	ownerIDColumn         = "owner_id"
	filenameColumn        = "filename"
	storageKeyColumn      = "storage_key"
	uploadTimestampColumn = "upload_timestamp"
	tagsColumn            = "tags"
	descriptionColumn     = "description"
)

var imageColumns = []string{
	imageIDColumn,
	ownerIDColumn,
	filenameColumn,
	storageKeyColumn,
	uploadTimestampColumn,
	tagsColumn,
	descriptionColumn,
}

type ImageMetadataRepo struct {
	*postgres.Postgres
}

func NewImageMetadataRepo(pg *postgres.Postgres) *ImageMetadataRepo {
	return &ImageMetadataRepo{pg}
}

func (r *ImageMetadataRepo) Put(ctx context.Context, image *entity.Image) error {
	sql, args, err := r.putSQL(image)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Put - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Put - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageMetadataRepo) putSQL(image *entity.Image) (string, []any, error) {
	tags := image.Tags
	if tags == nil {
		tags = []string{}
	}

	return r.Builder.
		Insert(imagesTable).
		Columns(imageColumns...).
		Values(
			image.ID,
			image.OwnerID,
			image.Filename,
			image.StorageKey,
			image.UploadTimestamp,
			tags,
			image.Description,
		).
		Suffix("ON CONFLICT (" + imageIDColumn + ") DO UPDATE SET " +
			ownerIDColumn + " = EXCLUDED." + ownerIDColumn + ", " +
			filenameColumn + " = EXCLUDED." + filenameColumn + ", " +
			storageKeyColumn + " = EXCLUDED." + storageKeyColumn + ", " +
			uploadTimestampColumn + " = EXCLUDED." + uploadTimestampColumn + ", " +
			tagsColumn + " = EXCLUDED." + tagsColumn + ", " +
			descriptionColumn + " = EXCLUDED." + descriptionColumn).
		ToSql()
}

func (r *ImageMetadataRepo) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	sql, args, err := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{imageIDColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	image, err := scanImage(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ImageMetadataRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("ImageMetadataRepo - GetByID - executor.QueryRow: %w", err)
	}

	return image, nil
}

// Delete does not report missing rows: the record is gone either way.
func (r *ImageMetadataRepo) Delete(ctx context.Context, id string) error {
	sql, args, err := r.Builder.
		Delete(imagesTable).
		Where(squirrel.Eq{imageIDColumn: id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Delete - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("ImageMetadataRepo - Delete - executor.Exec: %w", err)
	}

	return nil
}

func (r *ImageMetadataRepo) QueryByOwner(
	ctx context.Context,
	ownerID string,
	tr dto.TimestampRange,
	limit int,
) ([]*entity.Image, error) {
	sql, args, err := r.queryByOwnerSQL(ownerID, tr, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - QueryByOwner - r.Builder.ToSql: %w", err)
	}

	images, err := r.queryImages(ctx, sql, args, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - QueryByOwner: %w", err)
	}

	return images, nil
}

func (r *ImageMetadataRepo) queryByOwnerSQL(ownerID string, tr dto.TimestampRange, limit int) (string, []any, error) {
	q := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Where(squirrel.Eq{ownerIDColumn: ownerID})

	if tr.From != "" {
		q = q.Where(squirrel.GtOrEq{uploadTimestampColumn: tr.From})
	}
	if tr.To != "" {
		q = q.Where(squirrel.LtOrEq{uploadTimestampColumn: tr.To})
	}

	return q.
		OrderBy(uploadTimestampColumn + " ASC").
		Limit(uint64(limit)). //nolint:gosec // limit is validated upstream
		ToSql()
}

// Scan reads up to limit records in no particular order.
func (r *ImageMetadataRepo) Scan(ctx context.Context, limit int) ([]*entity.Image, error) {
	sql, args, err := r.Builder.
		Select(imageColumns...).
		From(imagesTable).
		Limit(uint64(limit)). //nolint:gosec // limit is validated upstream
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - Scan - r.Builder.ToSql: %w", err)
	}

	images, err := r.queryImages(ctx, sql, args, limit)
	if err != nil {
		return nil, fmt.Errorf("ImageMetadataRepo - Scan: %w", err)
	}

	return images, nil
}

func (r *ImageMetadataRepo) queryImages(ctx context.Context, sql string, args []any, limit int) ([]*entity.Image, error) {
	executor := r.GetExecutor(ctx)

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("executor.Query: %w", err)
	}
	defer rows.Close()

	images := make([]*entity.Image, 0, limit)
	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return images, nil
}

func scanImage(row pgx.Row) (*entity.Image, error) {
	var image entity.Image

	err := row.Scan(
		&image.ID,
		&image.OwnerID,
		&image.Filename,
		&image.StorageKey,
		&image.UploadTimestamp,
		&image.Tags,
		&image.Description,
	)
	if err != nil {
		return nil, err
	}

	if image.Tags == nil {
		image.Tags = []string{}
	}

	return &image, nil
}
