package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreyxaxa/Image-Hosting/config"
	kafkactrl "github.com/andreyxaxa/Image-Hosting/internal/controller/kafka"
	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi"
	"github.com/andreyxaxa/Image-Hosting/internal/controller/worker/outbox"
	infrakafka "github.com/andreyxaxa/Image-Hosting/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Hosting/internal/repo/persistent"
	"github.com/andreyxaxa/Image-Hosting/internal/usecase/image"
	outboxuc "github.com/andreyxaxa/Image-Hosting/internal/usecase/outbox"
	"github.com/andreyxaxa/Image-Hosting/pkg/httpserver"
	"github.com/andreyxaxa/Image-Hosting/pkg/kafka/consumer"
	"github.com/andreyxaxa/Image-Hosting/pkg/kafka/producer"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/andreyxaxa/Image-Hosting/pkg/s3client"
)

func Run(cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Logger
	l := logger.New(cfg.Log.Level)

	// Metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Repository

	// s3
	s3Ctx, s3Cancel := context.WithTimeout(ctx, cfg.S3.CfgLoadTimeout)
	defer s3Cancel()
	s3c, err := s3client.New(s3Ctx, cfg.S3.Endpoint,
		s3client.StaticCredentials(cfg.S3.AccessKey, cfg.S3.SecretKey),
		s3client.Region(cfg.S3.Region),
		s3client.PathStyle(cfg.S3.PathStyle),
	)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - s3client.New: %w", err))
	}
	if cfg.S3.CreateBucket {
		err = s3c.EnsureBucket(s3Ctx, cfg.S3.Bucket)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - s3c.EnsureBucket: %w", err))
		}
	}

	// metadata
	store, err := newMetadataStore(ctx, cfg, l)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - newMetadataStore: %w", err))
	}
	defer store.close()

	// Use-Case
	opts := []image.Option{
		image.StoreCallTimeout(cfg.Images.StoreCallTimeout),
		image.PresignTTL(cfg.S3.PresignTTL),
		image.KeyPrefix(cfg.S3.KeyPrefix),
		image.ListLimits(cfg.Images.ListDefaultLimit, cfg.Images.ListMaxLimit),
		image.Metrics(m),
	}
	if cfg.Events.Enabled {
		opts = append(opts, image.Events(store.outbox, store.transactor))
	}

	imageUseCase := image.New(
		persistent.NewImageBlobRepo(s3c, cfg.S3.Bucket),
		store.repo,
		l,
		opts...,
	)

	// Outbox Relay Worker
	var outboxRelayWorker *outbox.OutboxRelay
	if cfg.Events.Enabled {
		kafkaProducer, err := producer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - producer.New: %w", err))
		}

		outboxRelayWorker = outbox.New(
			outboxuc.New(store.outbox, store.transactor, l),
			infrakafka.NewEventProducer(kafkaProducer),
			m,
			l,
			cfg.OutboxRelay.PollInterval,
			cfg.OutboxRelay.CleanupInterval,
			cfg.OutboxRelay.MarkFailedInterval,
			cfg.OutboxRelay.ProcessBatchTimeout,
			cfg.OutboxRelay.BatchSize,
			cfg.OutboxRelay.MaxRetries,
		)
	}

	// Kafka as Controller
	var reconcileController *kafkactrl.ReconcileController
	if cfg.Reconciler.Enabled {
		kafkaConsumer, err := consumer.New(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - consumer.New: %w", err))
		}

		reconcileController = kafkactrl.New(
			imageUseCase,
			infrakafka.NewEventConsumer(kafkaConsumer),
			m,
			l,
			cfg.Reconciler.CommitTimeout,
			cfg.Reconciler.ProcessTimeout,
			cfg.Reconciler.Workers,
		)
	}

	// HTTP Server
	httpServer := httpserver.New(l,
		httpserver.Port(cfg.HTTP.Port),
		httpserver.Prefork(cfg.HTTP.UsePreforkMode),
		httpserver.BodyLimit(cfg.HTTP.BodyLimit),
		httpserver.ErrorHandler(restapi.ErrorHandler),
	)
	restapi.NewRouter(httpServer.App, cfg, imageUseCase, m, l)

	// Start Components
	if outboxRelayWorker != nil {
		err = outboxRelayWorker.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - outboxRelayWorker.Start: %w", err))
		}
	}
	if reconcileController != nil {
		err = reconcileController.Start(ctx)
		if err != nil {
			l.Fatal(fmt.Errorf("app - Run - reconcileController.Start: %w", err))
		}
	}
	httpServer.Start()

	// Waiting Signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case s := <-interrupt:
		l.Info("app - Run - signal: %s", s.String())
	case err = <-httpServer.Notify():
		l.Error(fmt.Errorf("app - Run - httpServer.Notify: %w", err))
	}

	// Shutdown
	err = httpServer.Shutdown()
	if err != nil {
		l.Error(fmt.Errorf("app - Run - httpServer.Shutdown: %w", err))
	}

	if outboxRelayWorker != nil {
		orlShutdownCtx, orlShutdownCancel := context.WithTimeout(ctx, cfg.OutboxRelay.ShutdownTimeout)
		defer orlShutdownCancel()
		err = outboxRelayWorker.Shutdown(orlShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - outboxRelayWorker.Shutdown: %w", err))
		}
	}

	if reconcileController != nil {
		rcShutdownCtx, rcShutdownCancel := context.WithTimeout(ctx, cfg.Reconciler.ShutdownTimeout)
		defer rcShutdownCancel()
		err = reconcileController.Shutdown(rcShutdownCtx)
		if err != nil {
			l.Error(fmt.Errorf("app - Run - reconcileController.Shutdown: %w", err))
		}
	}
}
