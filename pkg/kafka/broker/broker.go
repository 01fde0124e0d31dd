package broker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("no kafka brokers configured")

// WaitReady dials the first broker until it answers a metadata request or the
// attempts run out. who names the caller in log lines.
func WaitReady(ctx context.Context, who string, brokers []string, attempts int, timeout time.Duration) error {
	if len(brokers) == 0 {
		return fmt.Errorf("%s - WaitReady: %w", who, ErrNoBrokers)
	}

	var err error
	for attempts > 0 {
		err = ping(ctx, brokers[0])
		if err == nil {
			return nil
		}

		log.Printf("%s is trying to connect, attempts left: %d", who, attempts)

		time.Sleep(timeout)

		attempts--
	}

	return fmt.Errorf("%s - WaitReady - connAttempts == 0: %w", who, err)
}

func ping(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("kafka.DialContext: %w", err)
	}
	defer conn.Close()

	_, err = conn.Brokers()
	if err != nil {
		return fmt.Errorf("conn.Brokers: %w", err)
	}

	return nil
}
