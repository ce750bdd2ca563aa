package relay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"parrot/internal/config"
)

const translatePrompt = `You are a translation engine. Translate the user's text into the requested target language.
Reply with a JSON object {"result": "<translation>", "detected": "<ISO 639-1 code of the source language>"} and nothing else.`

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIProvider translates with a chat completion model in JSON mode.
type OpenAIProvider struct {
	client  chatCompleter
	model   string
	timeout time.Duration
}

func NewOpenAIProvider(cfg config.OpenAIConfig, timeout time.Duration) *OpenAIProvider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIProvider{client: openai.NewClientWithConfig(clientCfg), model: model, timeout: timeout}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (Result, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	source := req.From
	if source == "" {
		source = "detect automatically"
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: translatePrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Target language: %s\nSource language: %s\nText:\n%s", req.To, source, req.Text)},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, errEmptyTranslation
	}

	var result Result
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Result{}, fmt.Errorf("decode openai reply: %w", err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return Result{}, errEmptyTranslation
	}
	if result.Detected == "" {
		result.Detected = req.From
	}
	return result, nil
}
