package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBeforeInitIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordScore(context.Background(), "foot", "Gonfreville", 12)
		RecordChallengesCompleted(context.Background(), 2)
	})
}

func TestInit(t *testing.T) {
	require.NoError(t, Init())
	require.NoError(t, Init(), "second call is a no-op")

	assert.NotNil(t, Registrations)
	assert.NotNil(t, ScoreValue)
	assert.NotPanics(t, func() {
		RecordRegistration(context.Background())
		RecordTicketConsumed(context.Background(), "foot")
		RecordScanDenied(context.Background(), "foot")
		RecordSanction(context.Background())
	})
}
