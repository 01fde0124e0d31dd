package app

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Image-Hosting/config"
	"github.com/andreyxaxa/Image-Hosting/internal/repo"
	"github.com/andreyxaxa/Image-Hosting/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Hosting/migrations"
	"github.com/andreyxaxa/Image-Hosting/pkg/badgerdb"
	"github.com/andreyxaxa/Image-Hosting/pkg/dynamoclient"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/postgres"
)

// metadataStore is the selected metadata backend. outbox and transactor
// are set only for postgres.
type metadataStore struct {
	repo       repo.ImageMetadataRepo
	outbox     repo.OutboxRepo
	transactor repo.Transactor
	close      func()
}

func newMetadataStore(ctx context.Context, cfg *config.Config, l logger.Interface) (*metadataStore, error) {
	switch cfg.Metadata.Backend {
	case config.BackendPostgres:
		pg, err := postgres.New(cfg.PG.URL, postgres.MaxPoolSize(cfg.PG.PoolMax))
		if err != nil {
			return nil, fmt.Errorf("postgres.New: %w", err)
		}

		if cfg.PG.Migrate {
			err = pg.Migrate(migrations.FS)
			if err != nil {
				pg.Close()

				return nil, fmt.Errorf("pg.Migrate: %w", err)
			}
		}

		return &metadataStore{
			repo:       persistent.NewImageMetadataRepo(pg),
			outbox:     persistent.NewImageOutboxRepo(pg),
			transactor: pg,
			close:      pg.Close,
		}, nil

	case config.BackendDynamoDB:
		var opts []dynamoclient.Option
		if cfg.Dynamo.AccessKey != "" {
			opts = append(opts, dynamoclient.StaticCredentials(cfg.Dynamo.AccessKey, cfg.Dynamo.SecretKey))
		}

		dc, err := dynamoclient.New(ctx, cfg.Dynamo.Endpoint, cfg.Dynamo.Region, opts...)
		if err != nil {
			return nil, fmt.Errorf("dynamoclient.New: %w", err)
		}

		if cfg.Dynamo.CreateTable {
			err = dc.EnsureTable(ctx, cfg.Dynamo.Table, cfg.Dynamo.OwnerIndex)
			if err != nil {
				return nil, fmt.Errorf("dc.EnsureTable: %w", err)
			}
		}

		return &metadataStore{
			repo:  persistent.NewImageDynamoRepo(dc.Client, cfg.Dynamo.Table, cfg.Dynamo.OwnerIndex),
			close: func() {},
		}, nil

	case config.BackendBadger:
		bdb, err := badgerdb.New(cfg.Badger.Path, badgerdb.InMemory(cfg.Badger.InMemory))
		if err != nil {
			return nil, fmt.Errorf("badgerdb.New: %w", err)
		}

		return &metadataStore{
			repo: persistent.NewImageBadgerRepo(bdb),
			close: func() {
				if err := bdb.Close(); err != nil {
					l.Error(err, "app - metadataStore - bdb.Close")
				}
			},
		}, nil
	}

	return nil, fmt.Errorf("unknown metadata backend %q", cfg.Metadata.Backend)
}
