package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"resumelens-backend/internal/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// rateLimitBackoffSeconds is the fixed hint surfaced on 429s. The
	// gateway never retries internally under provider throttling.
	rateLimitBackoffSeconds = 30

	defaultTimeout  = 55 * time.Second
	maxOutputTokens = 2048
	temperature     = 0.3
)

// Client implements llm.Client using the Gemini generateContent REST API.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient constructs a new Gemini client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("GEMINI_MODEL is required")
	}
	timeout := defaultTimeout
	if raw := strings.TrimSpace(os.Getenv("GEMINI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: timeout,
		// Cancellation and the budget are enforced through the request
		// context, so the in-flight connection is aborted promptly.
		httpClient: &http.Client{},
	}, nil
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
}

// Analyze issues one generateContent request under the wall-clock budget and
// returns the model's JSON output, or a classified *llm.Error.
func (c *Client) Analyze(ctx context.Context, resumeText string) (json.RawMessage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt}}},
		Contents:          []content{{Parts: []part{{Text: BuildUserPrompt(resumeText)}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      temperature,
			MaxOutputTokens:  maxOutputTokens,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A deadline on reqCtx with the parent still live means the budget
		// expired; a canceled parent propagates as-is to the caller.
		if reqCtx.Err() != nil && ctx.Err() == nil {
			return nil, &llm.Error{Kind: llm.KindTimeout, Err: err}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &llm.Error{Kind: llm.KindUpstream, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if reqCtx.Err() != nil && ctx.Err() == nil {
			return nil, &llm.Error{Kind: llm.KindTimeout, Err: err}
		}
		return nil, &llm.Error{Kind: llm.KindUpstream, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &llm.Error{
			Kind:       llm.KindRateLimited,
			Status:     resp.StatusCode,
			RetryAfter: rateLimitBackoffSeconds,
			Err:        errors.New("gemini rate limited"),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &llm.Error{
			Kind:   llm.KindUpstream,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("gemini status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &llm.Error{Kind: llm.KindBadResponse, Err: fmt.Errorf("gemini response parse: %w", err)}
	}
	c.logUsage(parsed.UsageMetadata)

	text := candidateText(parsed)
	if text == "" {
		return nil, &llm.Error{Kind: llm.KindBadResponse, Err: errors.New("gemini response empty content")}
	}

	raw := json.RawMessage(text)
	if json.Valid(raw) {
		return raw, nil
	}
	if extracted, ok := llm.ExtractJSONObject(text); ok {
		return extracted, nil
	}
	return nil, &llm.Error{Kind: llm.KindBadResponse, Err: errors.New("gemini output is not valid JSON")}
}

func candidateText(parsed generateResponse) string {
	if len(parsed.Candidates) == 0 {
		return ""
	}
	parts := parsed.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0].Text)
}

func (c *Client) logUsage(usage *struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}) {
	if usage == nil {
		return
	}
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		c.model, usage.PromptTokenCount, usage.CandidatesTokenCount, usage.TotalTokenCount)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ llm.Client = (*Client)(nil)
