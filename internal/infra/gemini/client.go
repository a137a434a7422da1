package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vocab-sprint/internal/scoring"
)

const (
	// DefaultBaseURL is the Generative Language API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model the game grades with.
	DefaultModel = "gemini-1.5-flash"
)

// ErrNoCandidates is returned when the model produced no text.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// Client calls models/{model}:generateContent. Timeouts come from the caller's context.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Generate sends the prompt (and image, if any) as one request and returns the text.
func (c *Client) Generate(ctx context.Context, req scoring.Request) (string, error) {
	parts := []part{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, part{InlineData: &inlineData{MimeType: req.Image.MimeType, Data: req.Image.Data}})
	}
	payload, err := json.Marshal(generateRequest{Contents: []content{{Role: "user", Parts: parts}}})
	if err != nil {
		return "", fmt.Errorf("encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini returned %d (%s): %s", resp.StatusCode, apiErr.Error.Status, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini returned %d", resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}
	if len(decoded.Candidates) == 0 {
		return "", ErrNoCandidates
	}
	var text strings.Builder
	for _, p := range decoded.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w (finish reason %s)", ErrNoCandidates, decoded.Candidates[0].FinishReason)
	}
	return text.String(), nil
}
