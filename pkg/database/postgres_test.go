package database

import (
	"testing"
	"time"

	"github.com/AlTattoo/top-challenges/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestPostgresConfigFrom(t *testing.T) {
	cfg := PostgresConfigFrom(config.DatabaseConfig{
		Host:            "db",
		Port:            5432,
		User:            "ledger",
		Password:        "secret",
		DBName:          "ledger_db",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}, true)

	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, int32(5), cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, "host=db port=5432 user=ledger password=secret dbname=ledger_db sslmode=disable", cfg.DSN())
}

func TestPostgresConfigFrom_ClampsPool(t *testing.T) {
	cfg := PostgresConfigFrom(config.DatabaseConfig{MaxIdleConns: 50}, false)

	assert.Equal(t, int32(10), cfg.MaxConns)
	assert.Equal(t, int32(10), cfg.MinConns)
	assert.False(t, cfg.EnableTracing)
}
