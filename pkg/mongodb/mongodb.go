package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/AlTattoo/top-challenges/pkg/retry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config holds MongoDB connection settings
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MaxRetries     int
	RetryInterval  time.Duration
}

// ConfigFrom maps application settings onto a client configuration
func ConfigFrom(mc config.MongoDBConfig) *Config {
	return &Config{
		URI:            mc.URI,
		Database:       mc.Database,
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    50,
		MaxRetries:     3,
		RetryInterval:  time.Second,
	}
}

// Client wraps mongo.Client bound to one database
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens the client and waits for the primary to answer a ping
func Connect(ctx context.Context, cfg *Config) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	err = retry.Do(ctx, retry.ConnectBackoff(cfg.MaxRetries+1, cfg.RetryInterval), func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}, nil)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	return &Client{client: client, db: client.Database(cfg.Database)}, nil
}

// Database returns the configured database
func (c *Client) Database() *mongo.Database {
	return c.db
}

// HealthCheck pings the primary
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// Close disconnects the client
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
