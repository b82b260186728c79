// Package llm talks to a large-language-model API for the semantic steps of
// the pipeline: condensing a message before transmission and reconstructing
// it from a corrupted channel output. The client is an explicitly
// constructed component passed to whatever needs it; there is no package
// state and no ambient API key.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default API endpoints, overridable for tests.
const (
	DefaultOpenAIURL = "https://api.openai.com/v1/chat/completions"
	DefaultGeminiURL = "https://generativelanguage.googleapis.com/v1/models/gemini-1.0-pro:generateContent"
)

const processPrompt = `You are a semantic communication processor. Your task is to extract the core meaning
from the following text without changing its essential information. Keep the same tone
and intent, but represent it in a way that preserves semantic content while potentially
allowing for communication efficiency. Respond with only the processed text, without
any explanations or additional comments.

Input Text: %q
`

const reconstructPrompt = `You are a text reconstruction specialist. You've received a message that was transmitted
over a noisy channel and contains errors or corrupted characters.

Your task is to reconstruct the original meaning of the message based on context and
semantic understanding. Do not add explanations or additional content - respond only
with your best reconstruction of the original message.

Corrupted Message: %q
`

// Provider identifies which backend a client will call.
type Provider int

const (
	ProviderMock Provider = iota
	ProviderOpenAI
	ProviderGemini
)

// String returns the provider name.
func (p Provider) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderGemini:
		return "gemini"
	default:
		return "mock"
	}
}

// Client calls an LLM API. With no API keys configured it answers with
// deterministic mock responses so the rest of the pipeline stays usable.
type Client struct {
	OpenAIKey string
	GeminiKey string

	OpenAIURL  string
	GeminiURL  string
	HTTPClient *http.Client
}

// NewClient builds a client from the given keys. Gemini is preferred when
// both keys are present.
func NewClient(openAIKey, geminiKey string) *Client {
	return &Client{
		OpenAIKey:  openAIKey,
		GeminiKey:  geminiKey,
		OpenAIURL:  DefaultOpenAIURL,
		GeminiURL:  DefaultGeminiURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Provider reports which backend the client will use.
func (c *Client) Provider() Provider {
	switch {
	case c.GeminiKey != "":
		return ProviderGemini
	case c.OpenAIKey != "":
		return ProviderOpenAI
	default:
		return ProviderMock
	}
}

// Process condenses a message to its core meaning before transmission.
func (c *Client) Process(ctx context.Context, text string) (string, error) {
	if c.Provider() == ProviderMock {
		return "Processed version of: " + text, nil
	}
	return c.complete(ctx, fmt.Sprintf(processPrompt, text))
}

// Reconstruct asks the model for its best reading of a corrupted channel
// output. Replacement characters are stripped first so the prompt carries
// only the surviving text.
func (c *Client) Reconstruct(ctx context.Context, corrupted string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '�' {
			return ' '
		}
		return r
	}, corrupted)

	if c.Provider() == ProviderMock {
		return "Reconstructed version of: " + cleaned, nil
	}
	return c.complete(ctx, fmt.Sprintf(reconstructPrompt, cleaned))
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if c.Provider() == ProviderGemini {
		return c.callGemini(ctx, prompt)
	}
	return c.callOpenAI(ctx, prompt)
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) callOpenAI(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model:       "gpt-3.5-turbo",
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   200,
	}

	var resp openAIResponse
	err := c.postJSON(ctx, c.OpenAIURL, map[string]string{
		"Authorization": "Bearer " + c.OpenAIKey,
	}, reqBody, &resp)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 200,
			TopP:            0.8,
			TopK:            40,
		},
	}

	url := c.GeminiURL + "?key=" + c.GeminiKey

	var resp geminiResponse
	if err := c.postJSON(ctx, url, nil, reqBody, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text), nil
}

func (c *Client) postJSON(ctx context.Context, url string, headers map[string]string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
