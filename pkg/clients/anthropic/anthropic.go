package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 1024
)

// Insight is the structured analysis returned by the model.
type Insight struct {
	Summary         string   `json:"summary"`
	Alerts          []string `json:"alerts"`
	Recommendations []string `json:"recommendations"`
}

// Client defines the interface for AI inventory analysis.
type Client interface {
	AnalyzeInventory(ctx context.Context, snapshot any) (*Insight, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client, url: apiURL}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You are an inventory analyst for an industrial equipment lending store. You will receive a JSON snapshot of the current inventory, the active loans, and recent transaction history.

Analyze the data and report on:
1. Stock health: items running low (available quantity under 20% of total) or fully depleted.
2. Loan risk: overdue loans and borrowers holding many units.
3. Loss trends: LOST or DAMAGED returns in the recent history.

RULES:
- Output ONLY a JSON object with this structure:
  {
    "summary": "one or two sentence overview of inventory health",
    "alerts": ["specific urgent issues, empty array if none"],
    "recommendations": ["concrete actions for the store keeper"]
  }
- Keep every string under 200 characters.
- Do not invent items or borrowers that are not in the snapshot.`

func (c *anthropicClient) AnalyzeInventory(ctx context.Context, snapshot any) (*Insight, error) {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal inventory snapshot: %w", err)
	}

	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []Message{
			{Role: "user", Content: string(snapshotJSON)},
			// Prefill the assistant response to force JSON output.
			{Role: "assistant", Content: "{"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)

	if err != nil {
		return nil, fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return nil, fmt.Errorf("empty response from ai")
	}

	// Reconstruct the full JSON since we prefilled the opening brace. The
	// prefill also means the continuation can never open a markdown fence.
	responseText := strings.TrimSpace("{" + respBody.Content[0].Text)

	var insight Insight
	if err := json.Unmarshal([]byte(responseText), &insight); err != nil {
		return nil, fmt.Errorf("unmarshal ai response: %w", err)
	}
	if insight.Summary == "" {
		return nil, fmt.Errorf("ai response missing summary")
	}

	return &insight, nil
}
