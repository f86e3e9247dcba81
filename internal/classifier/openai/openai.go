// Package openai classifies review comments through the OpenAI chat API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	classifierModel "github.com/dapplion/review-royale/internal/classifier/model"
)

const maxCommentLength = 500

const systemPrompt = `You are a code review comment classifier. Analyze each review comment and classify it.

Categories:
- cosmetic: Style, formatting, naming conventions, typos
- logic: Bug fixes, correctness issues, edge cases, error handling
- structural: Architecture, design patterns, refactoring, code organization
- nit: Minor suggestions, nice-to-haves, opinions
- question: Clarifying questions, understanding requests

Quality score (1-10):
- 1-3: Brief/superficial (e.g., "nit: typo", "LGTM")
- 4-6: Standard helpful feedback with clear reasoning
- 7-10: Detailed, insightful, educational, catches subtle bugs

Respond with valid JSON only. Format:
{
  "results": [
    {"index": 0, "category": "logic", "quality_score": 7},
    {"index": 1, "category": "nit", "quality_score": 3}
  ]
}
`

// Client calls the chat completions endpoint with JSON response mode.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// New creates a new OpenAI classification client.
func New(apiKey, baseURL, model string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float32        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type batchResult struct {
	Results []classifierModel.Classification `json:"results"`
}

// ClassifyBatch sends one indexed batch of comment bodies and returns
// the verdicts the backend produced. Missing indices mean the backend
// skipped those comments.
func (c *Client) ClassifyBatch(ctx context.Context, bodies []string) ([]classifierModel.Classification, error) {
	if c.apiKey == "" {
		return nil, classifierModel.ErrBackendDisabled
	}

	var prompt bytes.Buffer
	prompt.WriteString("Classify these code review comments:\n\n")
	for i, body := range bodies {
		if len(body) > maxCommentLength {
			cut := maxCommentLength
			// Back off to a rune boundary so the payload stays valid UTF-8.
			for cut > 0 && !utf8.RuneStart(body[cut]) {
				cut--
			}
			body = body[:cut] + "..."
		}
		fmt.Fprintf(&prompt, "[%d] %s\n\n", i, body)
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt.String()},
		},
		Temperature:    0.3,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai: unexpected status %d: %s", resp.StatusCode, payload)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}

	var batch batchResult
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &batch); err != nil {
		return nil, fmt.Errorf("openai: parse verdicts: %w", err)
	}

	return batch.Results, nil
}
