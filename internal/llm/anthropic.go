package llm

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/GustavoCaso/gastos/internal/logger"
)

const anthropicMaxTokens = 1024

// jsonPrefill opens the assistant turn so the reply continues a JSON object.
const jsonPrefill = "{"

type Anthropic struct {
	client anthropic.Client
	logger *logger.Logger
}

func NewAnthropic(apiKey, baseURL string, logger *logger.Logger, opts ...option.RequestOption) *Anthropic {
	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &Anthropic{
		client: anthropic.NewClient(clientOpts...),
		logger: logger.With("component", "llm", "provider", "anthropic"),
	}
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
	}
	if req.JSONMode {
		messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(jsonPrefill)))
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(req.Temperature),
		Messages:    messages,
	})
	if err != nil {
		return "", errors.Wrap(err, "anthropic request failed")
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", errors.New("no text content in anthropic response")
	}

	a.logger.Debug("anthropic response",
		"model", req.Model,
		"json_mode", req.JSONMode,
		"size", text.Len(),
		"tokens_in", message.Usage.InputTokens,
		"tokens_out", message.Usage.OutputTokens,
	)

	if req.JSONMode {
		return jsonPrefill + text.String(), nil
	}

	return text.String(), nil
}
