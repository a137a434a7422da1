package datamuse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"vocab-sprint/internal/words"
)

// DefaultBaseURL is the public Datamuse endpoint. It needs no API key.
const DefaultBaseURL = "https://api.datamuse.com"

const requestTimeout = 10 * time.Second

// Client queries the Datamuse /words endpoint for spelled-like matches with
// frequency metadata (md=f), which arrives as "f:<per-million>" tags.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Candidates(ctx context.Context, q words.Query) ([]words.Candidate, error) {
	params := url.Values{}
	params.Set("sp", q.Pattern)
	params.Set("md", "f")
	params.Set("max", strconv.Itoa(q.Max))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/words?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build datamuse request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("datamuse request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datamuse returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var candidates []words.Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode datamuse response: %w", err)
	}
	return candidates, nil
}
