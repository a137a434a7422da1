package scoring

import (
	"encoding/json"
	"fmt"
	"strings"

	"vocab-sprint/internal/domain"
)

// ResultTotal is the fixed denominator of every score.
const ResultTotal = 50

type rawFeedback struct {
	Word       string `json:"word"`
	Status     string `json:"status"`
	Suggestion string `json:"suggestion"`
}

type rawResult struct {
	Score          *float64       `json:"score"`
	Total          *float64       `json:"total"`
	Feedback       *[]rawFeedback `json:"feedback"`
	OverallComment *string        `json:"overall_comment"`
}

// StripFences removes markdown code fences the model sometimes wraps JSON in.
func StripFences(body string) string {
	body = strings.ReplaceAll(body, "```json", "")
	body = strings.ReplaceAll(body, "```", "")
	return strings.TrimSpace(body)
}

// ParseResult decodes and validates a model response. Any deviation from the
// expected structure is reported as domain.ErrResponseShape.
func ParseResult(body string) (domain.ScoringResult, error) {
	cleaned := StripFences(body)
	if start, end := strings.Index(cleaned, "{"), strings.LastIndex(cleaned, "}"); start > 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	var raw rawResult
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return domain.ScoringResult{}, shapeError("decode: %v", err)
	}
	switch {
	case raw.Score == nil:
		return domain.ScoringResult{}, shapeError("missing score")
	case raw.Total == nil:
		return domain.ScoringResult{}, shapeError("missing total")
	case raw.Feedback == nil:
		return domain.ScoringResult{}, shapeError("missing feedback")
	case raw.OverallComment == nil:
		return domain.ScoringResult{}, shapeError("missing overall_comment")
	}
	if *raw.Total != ResultTotal {
		return domain.ScoringResult{}, shapeError("total is %v, want %d", *raw.Total, ResultTotal)
	}
	if *raw.Score < 0 || *raw.Score > ResultTotal {
		return domain.ScoringResult{}, shapeError("score %v out of range", *raw.Score)
	}

	feedback := make([]domain.WordFeedback, 0, len(*raw.Feedback))
	for i, entry := range *raw.Feedback {
		status := domain.FeedbackStatus(strings.ToLower(strings.TrimSpace(entry.Status)))
		if status != domain.StatusCorrect && status != domain.StatusIncorrect {
			return domain.ScoringResult{}, shapeError("feedback[%d] has status %q", i, entry.Status)
		}
		feedback = append(feedback, domain.WordFeedback{
			Word:       entry.Word,
			Status:     status,
			Suggestion: entry.Suggestion,
		})
	}

	return domain.ScoringResult{
		Score:          *raw.Score,
		Total:          ResultTotal,
		Feedback:       feedback,
		OverallComment: *raw.OverallComment,
	}, nil
}

func shapeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrResponseShape, fmt.Sprintf(format, args...))
}
