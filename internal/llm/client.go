// Package llm provides the HTTP client for the external question-answering
// assistant behind /api/ask. The client only transports a question and the
// crystal metrics computed locally; answer content is the backend's.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to an assistant backend over HTTP.
// A nil Client means the feature is disabled.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a client for the given backend URL, or nil when the
// URL is empty (assistant disabled).
func NewClient(url string) *Client {
	if url == "" {
		return nil
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the assistant backend is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

type askPayload struct {
	Question string             `json:"question"`
	Metrics  map[string]float64 `json:"metrics"`
}

// Answer is the assistant's reply.
type Answer struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Ask sends the question and metric context to the backend.
func (c *Client) Ask(ctx context.Context, question string, metrics map[string]float64) (Answer, error) {
	if !c.Enabled() {
		return Answer{}, fmt.Errorf("llm: client not configured")
	}

	body, err := json.Marshal(askPayload{Question: question, Metrics: metrics})
	if err != nil {
		return Answer{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Answer{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Answer{}, fmt.Errorf("llm: backend returned %d: %s", resp.StatusCode, data)
	}

	var answer Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return Answer{}, fmt.Errorf("llm: decoding response: %w", err)
	}
	return answer, nil
}
