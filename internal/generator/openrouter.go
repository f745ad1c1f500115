package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"slidesmith/pkg/deck"
)

// defaultOpenRouterBaseURL is the default OpenRouter API base URL.
const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Chat call settings. Drafting runs warm; formatting runs cool so the JSON
// comes back the same shape every time.
const (
	defaultMaxTokens  = 1500
	draftTemperature  = 0.7
	formatTemperature = 0.3
)

// HTTPDoer abstracts the HTTP client used by model backends.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OpenRouterGenerator drafts slides through the OpenRouter chat API. Each
// generation makes two calls: one to draft the content, one to reshape the
// draft into structured JSON.
type OpenRouterGenerator struct {
	APIKey  string
	BaseURL string
	Client  HTTPDoer
	Model   string

	// limiter paces outbound calls so a burst of generations cannot trip the
	// provider's own limits.
	limiter *rate.Limiter
}

// NewOpenRouterGenerator constructs an OpenRouter generator with explicit
// settings. requestsPerSecond bounds outbound call pacing; values at or below
// zero disable pacing.
func NewOpenRouterGenerator(model, apiKey, baseURL string, client HTTPDoer, requestsPerSecond float64) (*OpenRouterGenerator, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &OpenRouterGenerator{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Model:   model,
		limiter: limiter,
	}, nil
}

// Name identifies the backend for diagnostics.
func (g *OpenRouterGenerator) Name() string { return "openrouter" }

// Generate drafts req.NumSlides content slides.
func (g *OpenRouterGenerator) Generate(ctx context.Context, req Request) ([]deck.Slide, error) {
	draft, err := g.complete(ctx, draftPrompt(req), draftTemperature)
	if err != nil {
		return nil, fmt.Errorf("draft slides: %w", err)
	}
	structured, err := g.complete(ctx, formatPrompt(draft), formatTemperature)
	if err != nil {
		return nil, fmt.Errorf("format slides: %w", err)
	}
	slides, err := parseSlides(structured)
	if err != nil {
		return nil, fmt.Errorf("parse slides: %w", err)
	}
	return slides, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one user prompt and returns the assistant's reply text.
func (g *OpenRouterGenerator) complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	payload, err := json.Marshal(chatRequest{
		Model:       g.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   defaultMaxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := g.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openrouter error: %s", strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func draftPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert presentation designer and content creator. Create %d engaging, informative slides about %q.\n\n", req.NumSlides, req.Topic)
	if req.CustomContent != "" {
		fmt.Fprintf(&b, "Additional context to incorporate: %s\n\n", req.CustomContent)
	}
	b.WriteString("Available slide types: bullet_points, two_column, content_with_image\n\n")
	b.WriteString("For each slide, provide:\n")
	b.WriteString("1. Slide type (choose from available types)\n")
	b.WriteString("2. Slide title (3-8 words, engaging and descriptive)\n")
	b.WriteString("3. Content appropriate for that slide type:\n")
	b.WriteString("   - For bullet_points: 4-5 compelling bullet points with actionable insights\n")
	b.WriteString("   - For two_column: 4-6 alternating column items that create meaningful comparisons\n")
	b.WriteString("   - For content_with_image: 3-4 content points plus a specific image suggestion\n")
	b.WriteString("4. Citations (2-3 relevant sources per slide)\n\n")
	b.WriteString("Format your response as a natural text description of each slide, including the citations for each slide.\n")
	return b.String()
}

func formatPrompt(draft string) string {
	var b strings.Builder
	b.WriteString("Format the following slide descriptions into the exact JSON structure shown below. ")
	b.WriteString("Use the slide_type values: \"bullet_points\", \"two_column\", \"content_with_image\". ")
	b.WriteString("Extract the citations mentioned for each slide.\n\n")
	b.WriteString("Original content:\n")
	b.WriteString(draft)
	b.WriteString("\n\nSample output structure:\n")
	b.WriteString(`{"slides":[{"slide_type":"bullet_points","title":"Introduction to Topic","content":["Key point about the topic","Important aspect to consider"],"image_suggestion":null,"citations":["Research paper on topic (2023)"]}]}`)
	b.WriteString("\n\nReturn ONLY the JSON object, no additional text or explanations.\n")
	return b.String()
}

// parseSlides extracts slides from the model's JSON reply, tolerating the
// fenced code block models like to wrap JSON in.
func parseSlides(reply string) ([]deck.Slide, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var envelope struct {
		Slides []deck.Slide `json:"slides"`
	}
	if err := json.Unmarshal([]byte(cleaned), &envelope); err != nil {
		return nil, err
	}
	if len(envelope.Slides) == 0 {
		return nil, fmt.Errorf("no slides in response")
	}
	for i := range envelope.Slides {
		if envelope.Slides[i].Type == "" {
			envelope.Slides[i].Type = deck.SlideBulletPoints
		}
		if !envelope.Slides[i].Type.Valid() {
			return nil, fmt.Errorf("slide %d: unknown slide type %q", i+1, envelope.Slides[i].Type)
		}
		if envelope.Slides[i].Title == "" {
			envelope.Slides[i].Title = "Untitled Slide"
		}
	}
	return envelope.Slides, nil
}
