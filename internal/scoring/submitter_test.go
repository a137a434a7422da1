package scoring

import (
	"context"
	"encoding/base64"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"vocab-sprint/internal/domain"
)

const validBody = `{"score":10,"total":50,"feedback":[{"word":"Brave","status":"correct","suggestion":""},{"word":"Dance","status":"Incorrect","suggestion":"Use it as a verb."}],"overall_comment":"Good effort."}`

type fakeModel struct {
	body  string
	err   error
	calls int
	last  Request
}

func (m *fakeModel) Generate(_ context.Context, req Request) (string, error) {
	m.calls++
	m.last = req
	return m.body, m.err
}

func TestSubmitRejectsEmptyAnswerWithoutCallingModel(t *testing.T) {
	model := &fakeModel{body: validBody}
	submitter := NewSubmitter(model, time.Second)

	_, err := submitter.Submit(context.Background(), []string{"Brave"}, domain.Answer{Text: "   "})
	if !errors.Is(err, domain.ErrEmptyAnswer) {
		t.Fatalf("expected empty answer error, got %v", err)
	}
	_, err = submitter.Submit(context.Background(), []string{"Brave"}, domain.Answer{Image: &domain.Image{MimeType: "image/png"}})
	if !errors.Is(err, domain.ErrEmptyAnswer) {
		t.Fatalf("empty image data should count as no image, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called, calls=%d", model.calls)
	}
}

func TestSubmitTextOnly(t *testing.T) {
	model := &fakeModel{body: validBody}
	submitter := NewSubmitter(model, time.Second)

	result, err := submitter.Submit(context.Background(), []string{"Brave", "Dance"}, domain.Answer{Text: "hello"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if model.calls != 1 {
		t.Fatalf("expected one model call, got %d", model.calls)
	}
	if model.last.Image != nil {
		t.Fatalf("text-only submission should not carry an image part")
	}
	if !strings.Contains(model.last.Prompt, "Brave, Dance") || !strings.Contains(model.last.Prompt, "User text: hello") {
		t.Fatalf("prompt missing words or text:\n%s", model.last.Prompt)
	}
	if strings.Contains(model.last.Prompt, "Transcribe") {
		t.Fatalf("prompt should not ask for transcription without an image")
	}
	if result.Score != 10 || result.Total != 50 || len(result.Feedback) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Feedback[1].Status != domain.StatusIncorrect {
		t.Fatalf("status should be normalised, got %q", result.Feedback[1].Status)
	}
}

func TestSubmitImageOnly(t *testing.T) {
	model := &fakeModel{body: validBody}
	submitter := NewSubmitter(model, time.Second)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	_, err := submitter.Submit(context.Background(), []string{"Brave"}, domain.Answer{Image: &domain.Image{Data: png}})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if model.last.Image == nil {
		t.Fatalf("expected an image part")
	}
	if model.last.Image.MimeType != "image/png" {
		t.Fatalf("expected sniffed mime type, got %q", model.last.Image.MimeType)
	}
	if model.last.Image.Data != base64.StdEncoding.EncodeToString(png) {
		t.Fatalf("image data not base64 encoded")
	}
	if !strings.Contains(model.last.Prompt, "Transcribe the handwritten text") {
		t.Fatalf("prompt should ask for transcription:\n%s", model.last.Prompt)
	}
}

func TestSubmitRejectsNonImageAttachment(t *testing.T) {
	model := &fakeModel{body: validBody}
	_, err := NewSubmitter(model, time.Second).Submit(context.Background(), nil, domain.Answer{
		Image: &domain.Image{Data: []byte("%PDF-1.4"), MimeType: "application/pdf"},
	})
	if !errors.Is(err, domain.ErrInvalidImage) {
		t.Fatalf("expected invalid image, got %v", err)
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called")
	}
}

func TestSubmitServiceErrorIsRecoverable(t *testing.T) {
	model := &fakeModel{err: errors.New("503 unavailable")}
	submitter := NewSubmitter(model, time.Second)

	_, err := submitter.Submit(context.Background(), []string{"Brave"}, domain.Answer{Text: "x"})
	if !errors.Is(err, domain.ErrAnalysisFailed) {
		t.Fatalf("expected analysis failure, got %v", err)
	}

	model.err = nil
	model.body = validBody
	if _, err := submitter.Submit(context.Background(), []string{"Brave"}, domain.Answer{Text: "x"}); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
	if model.calls != 2 {
		t.Fatalf("expected exactly two calls, got %d", model.calls)
	}
}

func TestParseResultFenced(t *testing.T) {
	plain, err := ParseResult(validBody)
	if err != nil {
		t.Fatalf("plain: %v", err)
	}
	fenced, err := ParseResult("```json\n" + validBody + "\n```")
	if err != nil {
		t.Fatalf("fenced: %v", err)
	}
	if !reflect.DeepEqual(plain, fenced) {
		t.Fatalf("fenced result differs:\n%+v\n%+v", plain, fenced)
	}
	prefixed, err := ParseResult("Here is the grading:\n```\n" + validBody + "\n```")
	if err != nil {
		t.Fatalf("prefixed: %v", err)
	}
	if !reflect.DeepEqual(plain, prefixed) {
		t.Fatalf("prefixed result differs")
	}
}

func TestParseResultShapeErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":        "I cannot grade this.",
		"missing score":   `{"total":50,"feedback":[],"overall_comment":""}`,
		"missing total":   `{"score":1,"feedback":[],"overall_comment":""}`,
		"wrong total":     `{"score":1,"total":10,"feedback":[],"overall_comment":""}`,
		"missing comment": `{"score":1,"total":50,"feedback":[]}`,
		"missing list":    `{"score":1,"total":50,"overall_comment":""}`,
		"bad status":      `{"score":1,"total":50,"feedback":[{"word":"a","status":"maybe"}],"overall_comment":""}`,
		"score too high":  `{"score":51,"total":50,"feedback":[],"overall_comment":""}`,
		"score as string": `{"score":"ten","total":50,"feedback":[],"overall_comment":""}`,
	}
	for name, body := range bodies {
		_, err := ParseResult(body)
		if !errors.Is(err, domain.ErrResponseShape) {
			t.Errorf("%s: expected shape error, got %v", name, err)
		}
		if !errors.Is(err, domain.ErrAnalysisFailed) {
			t.Errorf("%s: shape error should also be an analysis failure", name)
		}
	}
}

func TestParseResultTrustsFeedbackLength(t *testing.T) {
	result, err := ParseResult(`{"score":3,"total":50,"feedback":[{"word":"x","status":"correct","suggestion":""}],"overall_comment":"ok"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(result.Feedback) != 1 {
		t.Fatalf("feedback should be kept as returned, got %d", len(result.Feedback))
	}
}
