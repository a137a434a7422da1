package domain

import (
	"strings"
	"time"
)

// Difficulty selects the word-frequency tier a session draws from.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy, medium or hard (case-insensitive). Blank means easy.
func ParseDifficulty(raw string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case "", DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	}
	return "", ErrInvalidDifficulty
}

// Image is a photographed answer sheet.
type Image struct {
	Data     []byte
	MimeType string
}

// Answer is what the player hands in once the round is over.
type Answer struct {
	Text  string
	Image *Image
}

// HasImage reports whether a non-empty image is attached.
func (a Answer) HasImage() bool {
	return a.Image != nil && len(a.Image.Data) > 0
}

// IsEmpty reports whether neither text nor an image was supplied.
func (a Answer) IsEmpty() bool {
	return strings.TrimSpace(a.Text) == "" && !a.HasImage()
}

// FeedbackStatus is the per-word verdict of the scoring model.
type FeedbackStatus string

const (
	StatusCorrect   FeedbackStatus = "correct"
	StatusIncorrect FeedbackStatus = "incorrect"
)

// WordFeedback is one entry of the scoring model's verdict.
type WordFeedback struct {
	Word       string         `json:"word"`
	Status     FeedbackStatus `json:"status"`
	Suggestion string         `json:"suggestion"`
}

// ScoringResult is the evaluated answer sheet.
type ScoringResult struct {
	Score          float64        `json:"score"`
	Total          int            `json:"total"`
	Feedback       []WordFeedback `json:"feedback"`
	OverallComment string         `json:"overall_comment"`
}

// Phase is the controller-level lifecycle of a play session.
type Phase string

const (
	PhasePlaying    Phase = "playing"
	PhaseSubmitting Phase = "submitting"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseCompleted  Phase = "completed"
	PhaseAborted    Phase = "aborted"
)

// TimerSnapshot is a point-in-time copy of the round clock.
type TimerSnapshot struct {
	State          string `json:"state"`
	RoundRemaining int    `json:"roundRemaining"`
	WordRemaining  int    `json:"wordRemaining"`
	Index          int    `json:"index"`
	WordCount      int    `json:"wordCount"`
}

// SessionSnapshot is the client-facing view of a play session.
type SessionSnapshot struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	Difficulty  Difficulty     `json:"difficulty"`
	Phase       Phase          `json:"phase"`
	Words       []string       `json:"words"`
	CurrentWord string         `json:"currentWord"`
	Timer       TimerSnapshot  `json:"timer"`
	Fallback    bool           `json:"fallback"`
	Warning     string         `json:"warning,omitempty"`
	Result      *ScoringResult `json:"result,omitempty"`
	StartedAt   time.Time      `json:"startedAt"`
}

// Event types streamed to session subscribers.
const (
	EventSnapshot = "snapshot"
	EventTick     = "tick"
	EventWord     = "word"
	EventFinished = "finished"
	EventResult   = "result"
	EventAborted  = "aborted"
)

// WordChange is the payload of a word event.
type WordChange struct {
	Word  string        `json:"word"`
	Timer TimerSnapshot `json:"timer"`
}

// Event is a single update pushed to session subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// SessionOutcome is handed off once a session ends, either scored or aborted.
type SessionOutcome struct {
	SessionID  string         `json:"sessionId"`
	UserID     string         `json:"userId"`
	Difficulty Difficulty     `json:"difficulty"`
	Aborted    bool           `json:"aborted"`
	Result     *ScoringResult `json:"result,omitempty"`
	EndedAt    time.Time      `json:"endedAt"`
}

// User is an authenticated account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
