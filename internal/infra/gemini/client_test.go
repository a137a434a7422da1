package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"vocab-sprint/internal/scoring"
)

func TestGenerateSendsPartsAndJoinsText(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "secret" {
			t.Errorf("api key header missing")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"score\":"},{"text":"1}"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "secret")
	text, err := client.Generate(context.Background(), scoring.Request{
		Prompt: "grade this",
		Image:  &scoring.InlineData{MimeType: "image/jpeg", Data: "aGVsbG8="},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != `{"score":1}` {
		t.Fatalf("unexpected text %q", text)
	}
	if len(got.Contents) != 1 || len(got.Contents[0].Parts) != 2 {
		t.Fatalf("expected one content with two parts, got %+v", got)
	}
	if got.Contents[0].Parts[0].Text != "grade this" {
		t.Fatalf("prompt part missing")
	}
	if img := got.Contents[0].Parts[1].InlineData; img == nil || img.MimeType != "image/jpeg" || img.Data != "aGVsbG8=" {
		t.Fatalf("image part wrong: %+v", img)
	}
}

func TestGenerateTextOnlyHasSinglePart(t *testing.T) {
	var got generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "m", "k").Generate(context.Background(), scoring.Request{Prompt: "p"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(got.Contents[0].Parts) != 1 {
		t.Fatalf("expected a single part, got %d", len(got.Contents[0].Parts))
	}
}

func TestGenerateErrors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"api error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
		},
		"no candidates": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"candidates":[]}`))
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>`))
		},
	}
	for name, handler := range cases {
		server := httptest.NewServer(handler)
		_, err := NewClient(server.URL, "", "k").Generate(context.Background(), scoring.Request{Prompt: "p"})
		server.Close()
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
		if name == "no candidates" && !errors.Is(err, ErrNoCandidates) {
			t.Errorf("%s: expected ErrNoCandidates, got %v", name, err)
		}
	}
}
