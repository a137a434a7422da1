package scoring

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"vocab-sprint/internal/domain"
)

// DefaultTimeout bounds a scoring call; image-bearing requests can be slow.
const DefaultTimeout = 60 * time.Second

// InlineData is a base64-encoded attachment tagged with its mime type.
type InlineData struct {
	MimeType string
	Data     string
}

// Request is a single evaluation instruction with an optional image part.
type Request struct {
	Prompt string
	Image  *InlineData
}

// Model is the generative-language service. It returns the response text.
type Model interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Submitter turns an answer sheet into a ScoringResult. It makes exactly one call
// per Submit and never retries.
type Submitter struct {
	model   Model
	timeout time.Duration
}

func NewSubmitter(model Model, timeout time.Duration) *Submitter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Submitter{model: model, timeout: timeout}
}

// Submit validates the answer, asks the model to grade it and parses the verdict.
func (s *Submitter) Submit(ctx context.Context, words []string, answer domain.Answer) (domain.ScoringResult, error) {
	req, err := BuildRequest(words, answer)
	if err != nil {
		return domain.ScoringResult{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := s.model.Generate(callCtx, req)
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	result, err := ParseResult(body)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if len(result.Feedback) != len(words) {
		log.Printf("scoring feedback covers %d words, pool has %d", len(result.Feedback), len(words))
	}
	return result, nil
}

// BuildRequest checks the precondition and assembles the model request.
func BuildRequest(words []string, answer domain.Answer) (Request, error) {
	if answer.IsEmpty() {
		return Request{}, domain.ErrEmptyAnswer
	}
	req := Request{Prompt: buildPrompt(words, answer.Text, answer.HasImage())}
	if answer.HasImage() {
		mimeType := strings.TrimSpace(answer.Image.MimeType)
		if mimeType == "" {
			mimeType = http.DetectContentType(answer.Image.Data)
		}
		if !strings.HasPrefix(mimeType, "image/") {
			return Request{}, domain.ErrInvalidImage
		}
		req.Image = &InlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(answer.Image.Data),
		}
	}
	return req, nil
}

func buildPrompt(words []string, text string, withImage bool) string {
	var b strings.Builder
	b.WriteString("You are an English language expert grading a vocabulary exercise.\n")
	fmt.Fprintf(&b, "Target words: %s\n", strings.Join(words, ", "))
	fmt.Fprintf(&b, "User text: %s\n\n", text)
	b.WriteString("Instructions:\n")
	step := 1
	if withImage {
		fmt.Fprintf(&b, "%d. An image is attached. Transcribe the handwritten text in it first and grade it together with the user text.\n", step)
		step++
	}
	fmt.Fprintf(&b, "%d. For each target word, decide whether it was used correctly in a sentence.\n", step)
	step++
	fmt.Fprintf(&b, "%d. Check grammar and spelling.\n", step)
	step++
	fmt.Fprintf(&b, "%d. Reply with a JSON object only, exactly in this structure:\n", step)
	b.WriteString(`{
  "score": number,
  "total": 50,
  "feedback": [{"word": "string", "status": "correct" or "incorrect", "suggestion": "string"}],
  "overall_comment": "string"
}
`)
	return b.String()
}
