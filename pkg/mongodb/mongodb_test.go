package mongodb

import (
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.MongoDBConfig{URI: "mongodb://mongo:27017", Database: "ledger"})

	assert.Equal(t, "mongodb://mongo:27017", cfg.URI)
	assert.Equal(t, "ledger", cfg.Database)
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, uint64(50), cfg.MaxPoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
}
