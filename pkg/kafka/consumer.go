package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/retry"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrConsumerClosed is returned by Poll once the consumer is closed
var ErrConsumerClosed = errors.New("kafka consumer closed")

// Record is a consumed record
type Record = kgo.Record

// ConsumerConfig holds consumer group settings
type ConsumerConfig struct {
	Brokers        []string
	GroupID        string
	Topics         []string
	ClientID       string
	MaxRetries     int
	RetryInterval  time.Duration
	SessionTimeout time.Duration
	// FromStart makes a new group read the topics from the beginning
	FromStart bool
}

// Consumer wraps a franz-go group consumer with manual commits
type Consumer struct {
	client *kgo.Client
}

// NewConsumer joins the consumer group, retrying the first ping
func NewConsumer(ctx context.Context, cfg *ConsumerConfig) (*Consumer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if cfg.GroupID == "" || len(cfg.Topics) == 0 {
		return nil, errors.New("kafka consumer group and topics are required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topics...),
		kgo.DisableAutoCommit(),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.SessionTimeout > 0 {
		opts = append(opts, kgo.SessionTimeout(cfg.SessionTimeout))
	}
	if cfg.FromStart {
		opts = append(opts, kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := retry.Do(ctx, retry.ConnectBackoff(cfg.MaxRetries+1, cfg.RetryInterval), client.Ping, nil); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka brokers: %w", err)
	}

	return &Consumer{client: client}, nil
}

// Poll blocks until records are available or ctx is done. Partition errors
// are joined and returned along with whatever records were fetched.
func (c *Consumer) Poll(ctx context.Context) ([]*Record, error) {
	fetches := c.client.PollFetches(ctx)
	if fetches.IsClientClosed() {
		return nil, ErrConsumerClosed
	}

	var errs []error
	fetches.EachError(func(topic string, partition int32, err error) {
		errs = append(errs, fmt.Errorf("%s[%d]: %w", topic, partition, err))
	})
	return fetches.Records(), errors.Join(errs...)
}

// CommitRecords commits the offsets of records
func (c *Consumer) CommitRecords(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}
	return c.client.CommitRecords(ctx, records...)
}

// HealthCheck pings the brokers
func (c *Consumer) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// Close leaves the group and closes the client
func (c *Consumer) Close() {
	c.client.Close()
}
