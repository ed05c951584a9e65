package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/GustavoCaso/gastos/internal/logger"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAI talks to a chat completions endpoint.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func NewOpenAI(apiKey, baseURL string, client *http.Client, logger *logger.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &OpenAI{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger.With("component", "llm", "provider", "openai"),
	}
}

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{
		Model: req.Model,
		Messages: []openAIMessage{
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "marshaling request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, "openai request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}

	var parsed openAIResponse
	if err = json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrapf(err, "parsing openai response (status %d)", resp.StatusCode)
	}

	if parsed.Error != nil {
		return "", errors.Errorf("openai api error (status %d): %s", resp.StatusCode, parsed.Error.Message)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("openai api error: status %d", resp.StatusCode)
	}

	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in openai response")
	}

	content := parsed.Choices[0].Message.Content
	if parsed.Usage != nil {
		o.logger.Debug("openai response",
			"model", req.Model,
			"json_mode", req.JSONMode,
			"size", len(content),
			"tokens_in", parsed.Usage.PromptTokens,
			"tokens_out", parsed.Usage.CompletionTokens,
		)
	}

	return content, nil
}
