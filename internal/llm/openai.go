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
	openAIEndpoint     = "https://api.openai.com/v1/chat/completions"
	openAIDefaultModel = "gpt-4o-mini"
)

// OpenAIClient implements Client using the OpenAI chat completions API.
// Setting BaseURL points it at any OpenAI-compatible server, which covers
// local model hosts.
type OpenAIClient struct {
	apiKey      string
	model       string
	endpoint    string
	specialists []Persona
	httpClient  *http.Client
}

// NewOpenAIClient creates an OpenAIClient. If config.APIKey is empty it
// falls back to the OPENAI_API_KEY environment variable.
func NewOpenAIClient(config ClientConfig, specialists []Persona) *OpenAIClient {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	model := config.Model
	if model == "" {
		model = openAIDefaultModel
	}
	endpoint := openAIEndpoint
	if config.BaseURL != "" {
		endpoint = strings.TrimSuffix(config.BaseURL, "/") + "/chat/completions"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIClient{
		apiKey:      apiKey,
		model:       model,
		endpoint:    endpoint,
		specialists: specialists,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

type openAIChatRequest struct {
	Model    string              `json:"model"`
	Messages []openAIChatMessage `json:"messages"`
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate produces a raw in-character response for the persona.
func (c *OpenAIClient) Generate(ctx context.Context, persona Persona, simContext, trigger string) (string, error) {
	prompt := PromptFor(persona, simContext, trigger)
	response, err := c.callAPI(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating response for %s: %w", persona.Name, err)
	}
	return response, nil
}

// Route asks the model to choose a specialist for the question.
func (c *OpenAIClient) Route(ctx context.Context, question, history string) (string, error) {
	prompt := RoutingPrompt(question, history, c.specialists)
	response, err := c.callAPI(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("routing question: %w", err)
	}
	return strings.TrimSpace(response), nil
}

// callAPI sends a single-message chat request and returns the first
// choice's content.
func (c *OpenAIClient) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIChatRequest{
		Model:    c.model,
		Messages: []openAIChatMessage{{Role: "user", Content: prompt}},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

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

	var chatResp openAIChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parsing API response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", chatResp.Error.Type, chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return chatResp.Choices[0].Message.Content, nil
}
