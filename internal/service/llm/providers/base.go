package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/chynybekuuludastan/content_studio/internal/service/llm"
)

const (
	testPrompt    = "Hello"
	testMaxTokens = 10
)

// apiRequest is a vendor POST call
type apiRequest struct {
	URL     string
	Headers map[string]string
	Body    interface{}
}

// apiResponse is what the adapters need from an HTTP response
type apiResponse struct {
	StatusCode int
	StatusText string
	Body       []byte
}

func (r *apiResponse) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// validateConfig fails fast on configs that cannot produce a request
func validateConfig(cfg llm.CallConfig, requireEndpoint bool) (llm.CallResult, bool) {
	if cfg.APIKey == "" {
		return llm.Failed(llm.MsgAPIKeyRequired), false
	}
	if requireEndpoint && cfg.Endpoint == "" {
		return llm.Failed(llm.MsgEndpointRequired), false
	}
	return llm.CallResult{}, true
}

// handleHTTPError formats a non-2xx response
func handleHTTPError(resp *apiResponse) string {
	return fmt.Sprintf("API request failed: %d %s", resp.StatusCode, resp.StatusText)
}

// postJSON marshals the request body and sends it
func postJSON(ctx context.Context, client Doer, request apiRequest) (*apiResponse, error) {
	requestBody, err := json.Marshal(request.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, request.URL, bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range request.Headers {
		httpReq.Header.Set(key, value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &apiResponse{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       body,
	}, nil
}

// statusText strips the numeric code from resp.Status
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// errorFormatter turns a failed response into a message
type errorFormatter func(resp *apiResponse) string

// testConnection sends request and reports only whether it was accepted
func testConnection(ctx context.Context, client Doer, request apiRequest, onError errorFormatter) llm.CallResult {
	resp, err := postJSON(ctx, client, request)
	if err != nil {
		return llm.Failed(err.Error())
	}
	if !resp.ok() {
		return llm.Failed(onError(resp))
	}
	return llm.Succeeded("", nil)
}

// generate sends request and extracts the text of a successful response
func generate(ctx context.Context, client Doer, request apiRequest, parse func([]byte) string, onError errorFormatter) llm.CallResult {
	resp, err := postJSON(ctx, client, request)
	if err != nil {
		return llm.Failed(err.Error())
	}
	if !resp.ok() {
		return llm.Failed(onError(resp))
	}
	if !json.Valid(resp.Body) {
		return llm.Failed("invalid JSON in API response")
	}
	return llm.Succeeded(parse(resp.Body), json.RawMessage(resp.Body))
}

// chatMessage is the OpenAI style wire message
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI style chat completions body
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func toChatMessages(conversation llm.Conversation) []chatMessage {
	messages := make([]chatMessage, 0, len(conversation))
	for _, m := range conversation {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// openAIChatBody builds the body shared by the OpenAI compatible vendors
func openAIChatBody(model, prompt string, opts llm.GenerationOptions) chatRequest {
	return chatRequest{
		Model:       model,
		Messages:    toChatMessages(llm.FormatMessages(opts.SystemPrompt, prompt)),
		Temperature: opts.TemperatureOrDefault(),
		MaxTokens:   opts.MaxTokensOrDefault(),
	}
}

// openAITestBody is the minimal chat request used by TestConnection
func openAITestBody(model string) chatRequest {
	return chatRequest{
		Model:       model,
		Messages:    toChatMessages(llm.FormatMessages(nil, testPrompt)),
		Temperature: llm.DefaultTemperature,
		MaxTokens:   testMaxTokens,
	}
}

func bearer(apiKey string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + apiKey}
}

// firstString returns the first path holding a non-null value
func firstString(body []byte, paths ...string) (string, bool) {
	for _, path := range paths {
		result := gjson.GetBytes(body, path)
		if result.Exists() && result.Type != gjson.Null {
			return result.String(), true
		}
	}
	return "", false
}

// parseChoices reads choices[0].message.content, optionally falling back to choices[0].text
func parseChoices(body []byte, allowText bool) string {
	paths := []string{"choices.0.message.content"}
	if allowText {
		paths = append(paths, "choices.0.text")
	}
	text, _ := firstString(body, paths...)
	return text
}
