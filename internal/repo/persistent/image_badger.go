package persistent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/andreyxaxa/Image-Hosting/internal/dto"
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/pkg/badgerdb"
	"github.com/andreyxaxa/Image-Hosting/pkg/types/errs"
	"github.com/dgraph-io/badger/v4"
)

// Key layout:
//
//	img/<image_id>                              -> JSON record
//	own/<owner_id>\x00<upload_timestamp>\x00<id> -> empty
//
// The owner keys sort by timestamp within an owner, which gives the ordered
// secondary path without a separate index structure.
const (
	badgerImagePrefix = "img/"
	badgerOwnerPrefix = "own/"
	badgerSep         = "\x00"
)

type ImageBadgerRepo struct {
	db *badger.DB
}

func NewImageBadgerRepo(b *badgerdb.BadgerDB) *ImageBadgerRepo {
	return &ImageBadgerRepo{db: b.DB}
}

func imageRecordKey(id string) []byte {
	return []byte(badgerImagePrefix + id)
}

func ownerPrefix(ownerID string) []byte {
	return []byte(badgerOwnerPrefix + ownerID + badgerSep)
}

func ownerIndexKey(image *entity.Image) []byte {
	return []byte(badgerOwnerPrefix + image.OwnerID + badgerSep + image.UploadTimestamp + badgerSep + image.ID)
}

// Put overwrites the record and moves its index entry when owner or
// timestamp changed.
func (r *ImageBadgerRepo) Put(_ context.Context, image *entity.Image) error {
	stored := *image
	if stored.Tags == nil {
		stored.Tags = []string{}
	}

	value, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("ImageBadgerRepo - Put - json.Marshal: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		prev, err := getImage(txn, image.ID)
		switch {
		case err == nil:
			if err := txn.Delete(ownerIndexKey(prev)); err != nil {
				return fmt.Errorf("txn.Delete: %w", err)
			}
		case !errors.Is(err, errs.ErrRecordNotFound):
			return err
		}

		if err := txn.Set(imageRecordKey(image.ID), value); err != nil {
			return fmt.Errorf("txn.Set: %w", err)
		}

		return txn.Set(ownerIndexKey(&stored), nil)
	})
	if err != nil {
		return fmt.Errorf("ImageBadgerRepo - Put - r.db.Update: %w", err)
	}

	return nil
}

func (r *ImageBadgerRepo) GetByID(_ context.Context, id string) (*entity.Image, error) {
	var image *entity.Image

	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		image, err = getImage(txn, id)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("ImageBadgerRepo - GetByID: %w", err)
	}

	return image, nil
}

func (r *ImageBadgerRepo) Delete(_ context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		image, err := getImage(txn, id)
		if err != nil {
			if errors.Is(err, errs.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := txn.Delete(ownerIndexKey(image)); err != nil {
			return fmt.Errorf("txn.Delete: %w", err)
		}

		return txn.Delete(imageRecordKey(id))
	})
	if err != nil {
		return fmt.Errorf("ImageBadgerRepo - Delete - r.db.Update: %w", err)
	}

	return nil
}

func (r *ImageBadgerRepo) QueryByOwner(
	ctx context.Context,
	ownerID string,
	tr dto.TimestampRange,
	limit int,
) ([]*entity.Image, error) {
	prefix := ownerPrefix(ownerID)
	images := make([]*entity.Image, 0, limit)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		start := prefix
		if tr.From != "" {
			start = append(bytes.Clone(prefix), tr.From...)
		}

		for it.Seek(start); it.ValidForPrefix(prefix) && len(images) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			ts, id, ok := splitOwnerKey(it.Item().Key()[len(prefix):])
			if !ok {
				continue
			}
			// keys are ordered by ts and the seek starts at From
			if !tr.Contains(ts) {
				break
			}

			image, err := getImage(txn, id)
			if err != nil {
				return err
			}
			images = append(images, image)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ImageBadgerRepo - QueryByOwner - r.db.View: %w", err)
	}

	return images, nil
}

// Scan returns records in key order, which is unrelated to upload time.
func (r *ImageBadgerRepo) Scan(ctx context.Context, limit int) ([]*entity.Image, error) {
	images := make([]*entity.Image, 0, limit)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerImagePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(images) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			image, err := decodeImage(it.Item())
			if err != nil {
				return err
			}
			images = append(images, image)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ImageBadgerRepo - Scan - r.db.View: %w", err)
	}

	return images, nil
}

func getImage(txn *badger.Txn, id string) (*entity.Image, error) {
	item, err := txn.Get(imageRecordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, errs.ErrRecordNotFound
		}
		return nil, fmt.Errorf("txn.Get: %w", err)
	}

	return decodeImage(item)
}

func decodeImage(item *badger.Item) (*entity.Image, error) {
	var image entity.Image

	err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &image)
	})
	if err != nil {
		return nil, fmt.Errorf("item.Value: %w", err)
	}

	if image.Tags == nil {
		image.Tags = []string{}
	}

	return &image, nil
}

func splitOwnerKey(rest []byte) (ts, id string, ok bool) {
	i := bytes.IndexByte(rest, 0)
	if i < 0 {
		return "", "", false
	}

	return string(rest[:i]), string(rest[i+1:]), true
}
