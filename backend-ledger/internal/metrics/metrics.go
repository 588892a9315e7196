package metrics

import (
	"context"
	"sync"

	"github.com/AlTattoo/top-challenges/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Ledger counters
	Registrations       *telemetry.Counter
	TicketsConsumed     *telemetry.Counter
	ScansDenied         *telemetry.Counter
	ScoresRecorded      *telemetry.Counter
	ChallengesCompleted *telemetry.Counter
	SanctionsIssued     *telemetry.Counter

	// Histograms
	ScoreValue *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all ledger metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	Registrations, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_registrations_total",
		Description: "Total number of registered participants",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsConsumed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_tickets_consumed_total",
		Description: "Total number of tickets consumed by game zone entries",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ScansDenied, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_scan_denied_total",
		Description: "Total number of game zone entries refused for lack of a valid ticket",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ScoresRecorded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_scores_recorded_total",
		Description: "Total number of recorded scores",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ChallengesCompleted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_challenges_completed_total",
		Description: "Total number of challenges that reached their target",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SanctionsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ledger_sanctions_issued_total",
		Description: "Total number of sanctions issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ScoreValue, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "ledger_score_value",
		Description: "Distribution of recorded scores",
		Unit:        "1",
	})
	return err
}

// RecordRegistration records a new participant
func RecordRegistration(ctx context.Context) {
	Registrations.Inc(ctx)
}

// RecordTicketConsumed records a granted game zone entry
func RecordTicketConsumed(ctx context.Context, gameZone string) {
	TicketsConsumed.Inc(ctx, attribute.String("game_zone", gameZone))
}

// RecordScanDenied records a refused game zone entry
func RecordScanDenied(ctx context.Context, gameZone string) {
	ScansDenied.Inc(ctx, attribute.String("game_zone", gameZone))
}

// RecordScore records a new score
func RecordScore(ctx context.Context, gameZone, location string, score float64) {
	attrs := []attribute.KeyValue{
		attribute.String("game_zone", gameZone),
		attribute.String("location", location),
	}
	ScoresRecorded.Inc(ctx, attrs...)
	ScoreValue.Record(ctx, score, attrs...)
}

// RecordChallengesCompleted records challenges that just completed
func RecordChallengesCompleted(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	ChallengesCompleted.Add(ctx, int64(n))
}

// RecordSanction records an issued sanction
func RecordSanction(ctx context.Context) {
	SanctionsIssued.Inc(ctx)
}
