package service

import (
	"context"
	"testing"

	"github.com/AlTattoo/top-challenges/backend-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaEventPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaEventPublisher(context.Background(), nil)
	require.Error(t, err)

	_, err = NewKafkaEventPublisher(context.Background(), &EventPublisherConfig{Topic: "ledger-events"})
	require.Error(t, err)
}

func TestEventHeaders(t *testing.T) {
	event := domain.NewLedgerEvent(domain.EventScoreRecorded, "p1", nil, t0)
	headers := eventHeaders(event, "ledger-service")

	assert.Equal(t, map[string]string{
		"event_type":   "score.recorded",
		"event_id":     event.EventID,
		"source":       "ledger-service",
		"content_type": "application/json",
	}, headers)
}

func TestNoOpEventPublisher(t *testing.T) {
	p := NewNoOpEventPublisher()
	assert.NoError(t, p.Publish(context.Background(), domain.NewLedgerEvent(domain.EventSanctionIssued, "p1", nil, t0)))
	assert.NoError(t, p.Close())
}
