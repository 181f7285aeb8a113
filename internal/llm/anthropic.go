package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
	anthropicDefaultModel = "claude-3-5-haiku-20241022"
	anthropicMaxTokens    = 1024
	anthropicDefaultWait  = 30 * time.Second
)

// AnthropicClient implements Client using the Anthropic Messages API.
type AnthropicClient struct {
	apiKey      string
	model       string
	baseURL     string
	specialists []Persona
	httpClient  *http.Client
}

// NewAnthropicClient creates an AnthropicClient. If config.APIKey is empty
// it falls back to the ANTHROPIC_API_KEY environment variable.
func NewAnthropicClient(config ClientConfig, specialists []Persona) *AnthropicClient {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	model := config.Model
	if model == "" {
		model = anthropicDefaultModel
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = anthropicAPIURL
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = anthropicDefaultWait
	}
	return &AnthropicClient{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		specialists: specialists,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces a raw in-character response for the persona.
func (c *AnthropicClient) Generate(ctx context.Context, persona Persona, simContext, trigger string) (string, error) {
	prompt := PromptFor(persona, simContext, trigger)
	response, err := c.sendRequest(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating response for %s: %w", persona.Name, err)
	}
	return response, nil
}

// Route asks the model to choose a specialist for the question. The raw
// choice is returned trimmed; roster validation is the caller's job.
func (c *AnthropicClient) Route(ctx context.Context, question, history string) (string, error) {
	prompt := RoutingPrompt(question, history, c.specialists)
	response, err := c.sendRequest(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("routing question: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// sendRequest sends a prompt to the Messages API and returns the first
// text content block.
func (c *AnthropicClient) sendRequest(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("anthropic client not available: missing API key")
	}

	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	for _, content := range apiResp.Content {
		if content.Type == "text" {
			return content.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in API response")
}
