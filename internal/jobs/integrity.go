package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/synergyai/orchestrator-server-go/internal/audit"
	"github.com/synergyai/orchestrator-server-go/internal/config"
	"github.com/synergyai/orchestrator-server-go/internal/repository"
)

// IntegrityJob periodically compares each session's turn counter with
// the completed exchanges actually present in its transcript. A
// divergence means a past write was torn and the affected session is
// reported for investigation.
type IntegrityJob struct {
	sessionRepo repository.SessionRepository
	interval    time.Duration
	done        chan struct{}
}

func NewIntegrityJob(sessionRepo repository.SessionRepository, interval time.Duration) *IntegrityJob {
	return &IntegrityJob{
		sessionRepo: sessionRepo,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *IntegrityJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("integrity job started")
}

func (j *IntegrityJob) Stop() {
	close(j.done)
	log.Info().Msg("integrity job stopped")
}

func (j *IntegrityJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *IntegrityJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := j.RunOnce(ctx)
	if err != nil {
		log.Error().Err(err).Msg("integrity sweep failed")
	} else if count > 0 {
		log.Warn().Int("count", count).Msg("integrity sweep found diverged sessions")
	}
}

// RunOnce performs a single sweep and returns the number of diverged
// sessions found.
func (j *IntegrityJob) RunOnce(ctx context.Context) (int, error) {
	mismatches, err := j.sessionRepo.FindTurnCountMismatches(ctx, config.IntegritySweepBatch)
	if err != nil {
		return 0, err
	}

	for _, m := range mismatches {
		log.Warn().
			Str("sessionId", m.SessionID).
			Str("userId", m.UserID).
			Int("turnCount", m.TurnCount).
			Int("completedExchanges", m.CompletedExchanges).
			Msg("transcript diverged from turn counter")

		audit.Log(ctx, audit.Event{
			Type:      audit.EventTranscriptDivergence,
			UserID:    m.UserID,
			SessionID: m.SessionID,
			Details: map[string]interface{}{
				"turn_count":          m.TurnCount,
				"completed_exchanges": m.CompletedExchanges,
			},
		})
	}

	return len(mismatches), nil
}
