package app

import (
	"sync"
	"time"

	"vocab-sprint/internal/domain"
	"vocab-sprint/internal/round"
	"vocab-sprint/internal/words"
)

// Session is one player's round: the word pool, the clock and the submission state.
//
// Lock order is clock, then session: clock events arrive with the clock locked and take
// s.mu, so s.mu must never be held while calling into the clock.
type Session struct {
	id         string
	userID     string
	difficulty domain.Difficulty
	words      []string
	fallback   bool
	warning    string
	startedAt  time.Time
	now        func() time.Time
	clock      *round.Clock

	mu          sync.Mutex
	phase       domain.Phase
	result      *domain.ScoringResult
	closed      bool
	subscribers map[chan domain.Event]struct{}
}

func newSession(id, userID string, difficulty domain.Difficulty, pool words.Pool, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		userID:      userID,
		difficulty:  difficulty,
		words:       append([]string(nil), pool.Words...),
		fallback:    pool.Fallback,
		startedAt:   now(),
		now:         now,
		phase:       domain.PhasePlaying,
		subscribers: make(map[chan domain.Event]struct{}),
	}
	if pool.Warning != nil {
		s.warning = pool.Warning.Error()
	}
	return s
}

// NewSession is exported for infrastructure layers that need sessions outside a
// running game. The round is not started.
func NewSession(id, userID string, difficulty domain.Difficulty, pool words.Pool) *Session {
	s := newSession(id, userID, difficulty, pool, time.Now)
	s.clock = round.NewClock(round.NewTimer(0, 0), s.onClockEvent)
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// Words returns a copy of the word pool.
func (s *Session) Words() []string {
	return append([]string(nil), s.words...)
}

// Snapshot returns the client-facing state of the session.
func (s *Session) Snapshot() domain.SessionSnapshot {
	timer := s.clock.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(timer)
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// onClockEvent runs with the clock locked.
func (s *Session) onClockEvent(e round.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	switch e.Kind {
	case round.EventTick:
		s.broadcastLocked(domain.Event{Type: domain.EventTick, Payload: e.Snapshot})
	case round.EventWord:
		s.broadcastLocked(domain.Event{Type: domain.EventWord, Payload: domain.WordChange{
			Word:  s.wordAt(e.Snapshot.Index),
			Timer: e.Snapshot,
		}})
	case round.EventFinished:
		if s.phase == domain.PhasePlaying {
			s.phase = domain.PhaseSubmitting
		}
		s.broadcastLocked(domain.Event{Type: domain.EventFinished, Payload: s.snapshotLocked(e.Snapshot)})
	}
}

// beginSubmit moves a finished round into analysis. Only one submission may be in flight.
func (s *Session) beginSubmit(answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case domain.PhasePlaying:
		return domain.ErrRoundInProgress
	case domain.PhaseAnalyzing:
		return domain.ErrSubmissionInFlight
	case domain.PhaseCompleted:
		return domain.ErrAlreadyScored
	case domain.PhaseAborted:
		return domain.ErrSessionClosed
	}
	if s.closed {
		return domain.ErrSessionClosed
	}
	if answer.IsEmpty() {
		return domain.ErrEmptyAnswer
	}
	s.phase = domain.PhaseAnalyzing
	return nil
}

// finishSubmit records the outcome of an analysis. A result for a torn-down session is dropped.
func (s *Session) finishSubmit(result domain.ScoringResult, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	if err != nil {
		s.phase = domain.PhaseSubmitting
		return err
	}
	s.phase = domain.PhaseCompleted
	s.result = &result
	s.broadcastLocked(domain.Event{Type: domain.EventResult, Payload: result})
	return nil
}

// close marks the session torn down, notifies subscribers and releases them.
// It reports whether this call closed it and whether the session had been scored.
func (s *Session) close(timer domain.TimerSnapshot) (closed bool, scored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, s.result != nil
	}
	scored = s.phase == domain.PhaseCompleted
	if !scored {
		s.phase = domain.PhaseAborted
	}
	s.closed = true
	s.broadcastLocked(domain.Event{Type: domain.EventAborted, Payload: s.snapshotLocked(timer)})
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	return true, scored
}

func (s *Session) subscribe(timer domain.TimerSnapshot) (<-chan domain.Event, func(), error) {
	ch := make(chan domain.Event, 16)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, nil, domain.ErrSessionClosed
	}
	s.subscribers[ch] = struct{}{}
	initial := domain.Event{Type: domain.EventSnapshot, Payload: s.snapshotLocked(timer)}
	ch <- initial
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *Session) outcome(aborted bool) domain.SessionOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.SessionOutcome{
		SessionID:  s.id,
		UserID:     s.userID,
		Difficulty: s.difficulty,
		Aborted:    aborted,
		Result:     s.result,
		EndedAt:    s.now(),
	}
}

// broadcastLocked never blocks: a full subscriber loses its oldest pending event.
func (s *Session) broadcastLocked(event domain.Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) snapshotLocked(timer domain.TimerSnapshot) domain.SessionSnapshot {
	return domain.SessionSnapshot{
		ID:          s.id,
		UserID:      s.userID,
		Difficulty:  s.difficulty,
		Phase:       s.phase,
		Words:       append([]string(nil), s.words...),
		CurrentWord: s.wordAt(timer.Index),
		Timer:       timer,
		Fallback:    s.fallback,
		Warning:     s.warning,
		Result:      s.result,
		StartedAt:   s.startedAt,
	}
}

func (s *Session) wordAt(index int) string {
	if index < 0 || index >= len(s.words) {
		return ""
	}
	return s.words[index]
}
