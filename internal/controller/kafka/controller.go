package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/internal/infrastructure"
	kafkapc "github.com/andreyxaxa/Image-Hosting/internal/infrastructure/kafka"
	"github.com/andreyxaxa/Image-Hosting/internal/usecase"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/segmentio/kafka-go"
)

const (
	_retryBackoff     = 200 * time.Millisecond
	_maxRetryBackoff  = 10 * time.Second
	_readErrorBackoff = time.Second
)

// ReconcileController consumes lifecycle events and finishes partial
// deletes. Other event types are committed untouched.
//
// A partition is always served by the same worker, and a failed event is
// retried until it succeeds or the controller stops, so no later offset of
// that partition is committed past it.
type ReconcileController struct {
	rec     usecase.ReconcileUseCase
	er      infrastructure.EventsReceiver
	metrics *metrics.Metrics
	logger  logger.Interface

	commitTimeout  time.Duration
	processTimeout time.Duration

	retryBackoff     time.Duration
	maxRetryBackoff  time.Duration
	readErrorBackoff time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	rec usecase.ReconcileUseCase,
	er infrastructure.EventsReceiver,
	m *metrics.Metrics,
	l logger.Interface,
	commitTimeout time.Duration,
	processTimeout time.Duration,
	workers int,
) *ReconcileController {
	return &ReconcileController{
		rec:            rec,
		er:             er,
		metrics:        m,
		logger:         l,
		commitTimeout:  commitTimeout,
		processTimeout: processTimeout,

		retryBackoff:     _retryBackoff,
		maxRetryBackoff:  _maxRetryBackoff,
		readErrorBackoff: _readErrorBackoff,

		workers: workers,
	}
}

func (c *ReconcileController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("ReconcileController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	tasks := make([]chan kafka.Message, c.workers)
	for i := range tasks {
		tasks[i] = make(chan kafka.Message, 2)

		c.wg.Add(1)
		go c.worker(tasks[i])
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			for _, ch := range tasks {
				close(ch)
			}
		}()

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				event, err := c.er.ReadEvent(c.ctx)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					c.logger.Error(err, "ReconcileController - Start - c.er.ReadEvent")

					if !c.sleep(c.readErrorBackoff) {
						return
					}

					continue
				}

				select {
				case tasks[event.Partition%len(tasks)] <- event:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// sleep waits for d and reports false if the controller stopped first.
func (c *ReconcileController) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-c.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *ReconcileController) handle(ctx context.Context, msg kafka.Message) error {
	if t := kafkapc.EventType(msg); t != "" && entity.EventType(t) != entity.EventImageDeletePartial {
		return nil
	}

	var event entity.LifecycleEvent
	err := json.Unmarshal(msg.Value, &event)
	if err != nil {
		// a payload that never decodes would block the partition forever
		c.logger.Error(err, "ReconcileController - handle - json.Unmarshal - offset=%d", msg.Offset)

		return nil
	}

	if event.Type != entity.EventImageDeletePartial {
		return nil
	}

	err = c.rec.Reconcile(ctx, event)
	c.metrics.ReconcileResult(err)
	if err != nil {
		return fmt.Errorf("ReconcileController - handle - c.rec.Reconcile: %w", err)
	}

	return nil
}

func (c *ReconcileController) process(msg kafka.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ReconcileController - process - panic: %v", r)
		}
	}()

	processCtx, processCancel := context.WithTimeout(c.ctx, c.processTimeout)
	defer processCancel()

	return c.handle(processCtx, msg)
}

func (c *ReconcileController) worker(tasks <-chan kafka.Message) {
	defer c.wg.Done()

	for msg := range tasks {
		backoff := c.retryBackoff
		for {
			err := c.process(msg)
			if err == nil {
				break
			}
			c.logger.Error(err, "ReconcileController - worker - c.process - partition=%d offset=%d", msg.Partition, msg.Offset)

			// left uncommitted, the event is redelivered after restart
			if !c.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, c.maxRetryBackoff)
		}

		// commit only after the event is handled
		commitCtx, commitCancel := context.WithTimeout(c.ctx, c.commitTimeout)
		err := c.er.CommitEvent(commitCtx, msg)
		commitCancel()
		if err != nil {
			c.logger.Error(err, "ReconcileController - worker - c.er.CommitEvent")
		}
	}
}

func (c *ReconcileController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		if err := c.er.Close(); err != nil {
			c.logger.Error(err, "ReconcileController - Shutdown - c.er.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("ReconcileController - Shutdown: %w", ctx.Err())
	}
}
