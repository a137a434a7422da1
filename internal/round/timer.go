package round

import "vocab-sprint/internal/domain"

// State of the round clock.
type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
)

const (
	// DefaultRoundBudget is the whole-round allowance in seconds (25 minutes).
	DefaultRoundBudget = 25 * 60
	// DefaultWordBudget is the per-word allowance in seconds.
	DefaultWordBudget = 30
)

// EventKind is what a timer step produced.
type EventKind string

const (
	EventTick     EventKind = "tick"
	EventWord     EventKind = "word"
	EventFinished EventKind = "finished"
)

// Event is emitted by Tick and Skip. Snapshot is the state right after the step.
type Event struct {
	Kind     EventKind
	Snapshot domain.TimerSnapshot
}

// Timer is the round/word countdown state machine. It is not safe for concurrent
// use; Clock serializes access to it.
//
// Running out of round time does not stop word cycling: only exhausting the word
// list finishes the round.
type Timer struct {
	roundBudget int
	wordBudget  int

	state          State
	roundRemaining int
	wordRemaining  int
	index          int
	wordCount      int
}

// NewTimer builds an idle timer. Non-positive budgets fall back to the defaults.
func NewTimer(roundBudget, wordBudget int) *Timer {
	if roundBudget <= 0 {
		roundBudget = DefaultRoundBudget
	}
	if wordBudget <= 0 {
		wordBudget = DefaultWordBudget
	}
	return &Timer{
		roundBudget:    roundBudget,
		wordBudget:     wordBudget,
		state:          StateIdle,
		roundRemaining: roundBudget,
		wordRemaining:  wordBudget,
	}
}

// Start moves an idle timer to running for a pool of wordCount words.
// It returns false if the timer was not idle or the pool is empty.
func (t *Timer) Start(wordCount int) bool {
	if t.state != StateIdle || wordCount <= 0 {
		return false
	}
	t.state = StateRunning
	t.wordCount = wordCount
	t.index = 0
	t.roundRemaining = t.roundBudget
	t.wordRemaining = t.wordBudget
	return true
}

// Tick advances the clocks by one second.
func (t *Timer) Tick() []Event {
	if t.state != StateRunning {
		return nil
	}
	if t.roundRemaining > 0 {
		t.roundRemaining--
	}
	if t.wordRemaining > 0 {
		t.wordRemaining--
	}
	events := []Event{{Kind: EventTick, Snapshot: t.Snapshot()}}
	if t.wordRemaining == 0 {
		events = append(events, t.advance())
	}
	return events
}

// Skip moves to the next word as if the current one had expired.
func (t *Timer) Skip() []Event {
	if t.state != StateRunning {
		return nil
	}
	return []Event{t.advance()}
}

func (t *Timer) advance() Event {
	if t.index >= t.wordCount-1 {
		t.state = StateFinished
		return Event{Kind: EventFinished, Snapshot: t.Snapshot()}
	}
	t.index++
	t.wordRemaining = t.wordBudget
	return Event{Kind: EventWord, Snapshot: t.Snapshot()}
}

// State returns the current state.
func (t *Timer) State() State {
	return t.state
}

// Snapshot copies the current counters.
func (t *Timer) Snapshot() domain.TimerSnapshot {
	return domain.TimerSnapshot{
		State:          string(t.state),
		RoundRemaining: t.roundRemaining,
		WordRemaining:  t.wordRemaining,
		Index:          t.index,
		WordCount:      t.wordCount,
	}
}
