package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"vocab-sprint/internal/domain"
	"vocab-sprint/internal/round"
	"vocab-sprint/internal/words"
)

// SessionRepository abstracts how live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	// Put stores the session as its user's active one and returns the session it replaced.
	Put(session *Session) (previous *Session)
	Get(id string) (*Session, bool)
	Delete(id string)
	List() []*Session
}

// PoolSource resolves the word pool for a new round.
type PoolSource interface {
	FetchPool(ctx context.Context, difficulty domain.Difficulty) words.Pool
}

// Scorer evaluates an answer sheet against the word pool.
type Scorer interface {
	Submit(ctx context.Context, words []string, answer domain.Answer) (domain.ScoringResult, error)
}

// OutcomePublisher hands finished sessions to downstream consumers.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, outcome domain.SessionOutcome) error
}

// Options tune round budgets and make the service deterministic in tests.
type Options struct {
	RoundBudget  int
	WordBudget   int
	TickInterval time.Duration
	Ticker       round.TickerFunc
	Now          func() time.Time
	NewID        func() string
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.Ticker == nil {
		o.Ticker = round.RealTicker
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// GameService contains the play-session use cases.
type GameService struct {
	sessions SessionRepository
	pools    PoolSource
	scorer   Scorer
	outcomes OutcomePublisher
	opts     Options
}

func NewGameService(sessions SessionRepository, pools PoolSource, scorer Scorer, outcomes OutcomePublisher, opts Options) *GameService {
	return &GameService{
		sessions: sessions,
		pools:    pools,
		scorer:   scorer,
		outcomes: outcomes,
		opts:     opts.withDefaults(),
	}
}

// Start fetches a word pool and starts a new round. The user's previous session, if
// any, is torn down.
func (g *GameService) Start(ctx context.Context, userID string, difficulty domain.Difficulty) (domain.SessionSnapshot, error) {
	if userID == "" {
		return domain.SessionSnapshot{}, domain.ErrUnauthenticated
	}
	pool := g.pools.FetchPool(ctx, difficulty)
	if pool.Warning != nil {
		log.Printf("word pool warning for user %s: %v", userID, pool.Warning)
	}

	session := newSession(g.opts.NewID(), userID, difficulty, pool, g.opts.Now)
	session.clock = round.NewClockWithTicker(
		round.NewTimer(g.opts.RoundBudget, g.opts.WordBudget),
		session.onClockEvent,
		g.opts.TickInterval,
		g.opts.Ticker,
	)

	if previous := g.sessions.Put(session); previous != nil && previous.ID() != session.ID() {
		g.teardown(ctx, previous)
	}
	session.clock.Begin(len(session.words))
	log.Printf("session %s started: user=%s difficulty=%s fallback=%t", session.id, userID, difficulty, pool.Fallback)
	return session.Snapshot(), nil
}

// Get returns the current state of a session owned by userID.
func (g *GameService) Get(_ context.Context, sessionID, userID string) (domain.SessionSnapshot, error) {
	session, err := g.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// Skip moves to the next word immediately.
func (g *GameService) Skip(_ context.Context, sessionID, userID string) (domain.SessionSnapshot, error) {
	session, err := g.owned(sessionID, userID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if session.Phase() != domain.PhasePlaying {
		return domain.SessionSnapshot{}, domain.ErrRoundOver
	}
	if events := session.clock.Skip(); len(events) == 0 {
		return domain.SessionSnapshot{}, domain.ErrRoundOver
	}
	return session.Snapshot(), nil
}

// Submit sends the answer sheet for scoring. A failed analysis leaves the session
// ready for another attempt.
func (g *GameService) Submit(ctx context.Context, sessionID, userID string, answer domain.Answer) (domain.ScoringResult, error) {
	session, err := g.owned(sessionID, userID)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if err := session.beginSubmit(answer); err != nil {
		return domain.ScoringResult{}, err
	}

	result, scoreErr := g.scorer.Submit(ctx, session.Words(), answer)
	if err := session.finishSubmit(result, scoreErr); err != nil {
		if scoreErr == nil {
			log.Printf("session %s closed during analysis, result discarded", sessionID)
		} else {
			log.Printf("session %s analysis failed: %v", sessionID, err)
		}
		return domain.ScoringResult{}, err
	}

	log.Printf("session %s scored %.1f/%d", sessionID, result.Score, result.Total)
	g.publish(ctx, session.outcome(false))
	return result, nil
}

// Subscribe returns a channel of session events, starting with a snapshot.
// The caller must invoke the returned cancel function to avoid leaks.
func (g *GameService) Subscribe(_ context.Context, sessionID, userID string) (<-chan domain.Event, func(), error) {
	session, err := g.owned(sessionID, userID)
	if err != nil {
		return nil, nil, err
	}
	return session.subscribe(session.clock.Snapshot())
}

// Abort tears the session down. Any in-flight analysis result will be discarded.
func (g *GameService) Abort(ctx context.Context, sessionID, userID string) error {
	session, err := g.owned(sessionID, userID)
	if err != nil {
		return err
	}
	g.teardown(ctx, session)
	return nil
}

// Shutdown tears down every live session.
func (g *GameService) Shutdown(ctx context.Context) {
	for _, session := range g.sessions.List() {
		g.teardown(ctx, session)
	}
}

func (g *GameService) owned(sessionID, userID string) (*Session, error) {
	session, ok := g.sessions.Get(sessionID)
	if !ok || session.UserID() != userID {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (g *GameService) teardown(ctx context.Context, session *Session) {
	g.sessions.Delete(session.ID())
	session.clock.Stop()
	closed, scored := session.close(session.clock.Snapshot())
	if !closed {
		return
	}
	log.Printf("session %s closed", session.ID())
	if !scored {
		g.publish(ctx, session.outcome(true))
	}
}

func (g *GameService) publish(ctx context.Context, outcome domain.SessionOutcome) {
	if g.outcomes == nil {
		return
	}
	if err := g.outcomes.PublishOutcome(ctx, outcome); err != nil {
		log.Printf("publish outcome for session %s failed: %v", outcome.SessionID, err)
	}
}
