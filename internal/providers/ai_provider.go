package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"leadcapture/formbridge/internal/common"
	"leadcapture/formbridge/internal/constants"
)

// ChatMessage is one message of an OpenAI-compatible chat completion
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []ChatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// AIProvider calls an OpenAI-compatible chat completions endpoint
type AIProvider struct {
	Client *http.Client
}

func NewAIProvider(timeout time.Duration) *AIProvider {
	return &AIProvider{
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete sends messages and returns the first choice's content. The
// response is requested as a JSON object.
func (p *AIProvider) Complete(ctx context.Context, ai common.AISettings, messages []ChatMessage) (string, error) {
	if ai.APIKey == "" {
		return "", &ProviderError{
			Code:    constants.ErrCodeConfigurationMissing,
			Message: "AI API key is not configured",
		}
	}

	payload, err := json.Marshal(chatCompletionRequest{
		Model:          ai.Model,
		Messages:       messages,
		Temperature:    0.2,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeBadRequest,
			Message: "Failed to marshal request body",
			Err:     err,
		}
	}

	endpoint := strings.TrimRight(ai.APIURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: "Failed to create request",
			Err:     err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+ai.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeNetworkError,
			Message: constants.GetErrorMessage(constants.ErrCodeNetworkError),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: "Failed to read response body",
			Err:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", buildHTTPError(resp.StatusCode, endpoint, common.Truncate(string(bodyBytes), 2048))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: "Failed to decode response",
			Details: common.Truncate(string(bodyBytes), 2048),
			Err:     err,
		}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &ProviderError{
			Code:    constants.ErrCodeInvalidResponse,
			Message: "AI response contained no content",
		}
	}

	return parsed.Choices[0].Message.Content, nil
}
