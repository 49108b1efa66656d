package recognizer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultEndpoint is the OpenRouter chat completions URL.
	DefaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"

	// DefaultModel is the vision model used when none is configured.
	DefaultModel = "openai/gpt-4o-mini"
)

const visionPrompt = "Read the distorted text in this CAPTCHA image. " +
	"Respond with a JSON object of the form " +
	`{"text": "<characters you read>", "confidence": <0.0-1.0>}. ` +
	"The text contains only digits 0-9 and uppercase letters A-Z. " +
	"Respond with the JSON object only."

// OpenRouter recognizes text by sending the image to a vision-capable model
// through the OpenRouter chat completions API.
type OpenRouter struct {
	// APIKey authenticates the request. Required.
	APIKey string

	// Model is the model slug; DefaultModel when empty.
	Model string

	// Endpoint overrides the API URL, mainly for tests.
	Endpoint string

	// HTTPClient overrides the client; a 60 second default is used otherwise.
	HTTPClient *http.Client
}

// NewOpenRouter builds a recognizer for the given API key and model. An empty
// model selects DefaultModel.
func NewOpenRouter(apiKey, model string) *OpenRouter {
	return &OpenRouter{APIKey: apiKey, Model: model}
}

func (o *OpenRouter) Name() string { return "openrouter" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Infer uploads the image as a data URL and parses the model's JSON reply.
// A reply that is not valid JSON of the expected shape yields an empty
// zero-confidence result rather than an error, so one flaky model answer does
// not sink a multi-backend run.
func (o *OpenRouter) Infer(ctx context.Context, data []byte) (*Result, error) {
	if o.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is not set")
	}

	model := o.Model
	if model == "" {
		model = DefaultModel
	}
	endpoint := o.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	mime := http.DetectContentType(data)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: visionPrompt},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
		Temperature:    0,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "captcha-ocr")

	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode, respBody)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("openrouter returned no choices")
	}

	return parseModelReply(parsed.Choices[0].Message.Content), nil
}

// parseModelReply interprets the model's message content as the expected
// {"text", "confidence"} object, falling back to an empty result on anything
// malformed.
func parseModelReply(content string) *Result {
	var reply struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(content), &reply); err != nil {
		return &Result{Text: "", Confidence: 0}
	}

	conf := reply.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}
	return &Result{Text: reply.Text, Confidence: conf}
}
