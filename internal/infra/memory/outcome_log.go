package memory

import (
	"context"
	"log"
	"sync"

	"vocab-sprint/internal/domain"
)

// OutcomeLog keeps finished-session outcomes in memory and logs them. It is the
// handoff used when no broker is configured.
type OutcomeLog struct {
	mu       sync.Mutex
	outcomes []domain.SessionOutcome
}

func NewOutcomeLog() *OutcomeLog {
	return &OutcomeLog{}
}

func (l *OutcomeLog) PublishOutcome(_ context.Context, outcome domain.SessionOutcome) error {
	l.mu.Lock()
	l.outcomes = append(l.outcomes, outcome)
	l.mu.Unlock()
	if outcome.Aborted {
		log.Printf("session %s aborted (user %s)", outcome.SessionID, outcome.UserID)
		return nil
	}
	if outcome.Result != nil {
		log.Printf("session %s finished: %.1f/%d (user %s)", outcome.SessionID, outcome.Result.Score, outcome.Result.Total, outcome.UserID)
	}
	return nil
}

// Outcomes returns a copy of everything published so far.
func (l *OutcomeLog) Outcomes() []domain.SessionOutcome {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.SessionOutcome(nil), l.outcomes...)
}
