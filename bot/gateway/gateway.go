// Package gateway is the boundary to the free-text responder consulted
// when an utterance falls outside the structured enquiry flow. The
// responder is an OpenRouter-compatible chat completions endpoint; its
// prompting and model choice stay behind this boundary.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	contractx "github.com/bairolabs/bairo/bot/contract"
)

const systemPrompt = "You are Bairo, the assistant of a CADD training centre. " +
	"Answer briefly and factually about courses (Mechanical: AutoCAD, CATIA, SolidWorks, NX CAD, Creo, CAM; " +
	"Civil: Revit, BIM; IT: Python, Java, C, C++, Web Design). " +
	"For fees, syllabus, or schedules, direct the visitor to call 7845821665 or visit the centre."

// Config configures the responder client. All fields load from the
// environment under the GATEWAY prefix.
type Config struct {
	BaseURL             string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey              string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model               string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionTokens int64         `envconfig:"MAX_COMPLETION_TOKENS" split_words:"true" default:"500"`
	Temperature         float64       `envconfig:"TEMPERATURE" split_words:"true" default:"0.3"`
	Timeout             time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL             string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName            string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Client implements contract.Responder against a chat completions API.
type Client struct {
	api                 openaisdk.Client
	model               string
	temperature         float64
	maxCompletionTokens int64
	timeout             time.Duration
}

var _ contractx.Responder = (*Client)(nil)

// NewClient builds the responder from config.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gateway: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gateway: model is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); trimmed != "" {
		opts = append(opts, option.WithBaseURL(trimmed))
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.SiteName))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		api:                 openaisdk.NewClient(opts...),
		model:               model,
		temperature:         cfg.Temperature,
		maxCompletionTokens: cfg.MaxCompletionTokens,
		timeout:             timeout,
	}, nil
}

// Respond sends the conversation history and returns the reply text.
// Every transport or API failure wraps ErrGatewayUnavailable; callers
// substitute fixed copy instead of surfacing it.
func (c *Client) Respond(ctx context.Context, history []contractx.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openaisdk.SystemMessage(systemPrompt))
	for _, msg := range history {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(content))
		default:
			messages = append(messages, openaisdk.UserMessage(content))
		}
	}

	completion, err := c.api.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:               openaisdk.ChatModel(c.model),
		Messages:            messages,
		Temperature:         openaisdk.Float(c.temperature),
		MaxCompletionTokens: openaisdk.Int(c.maxCompletionTokens),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrGatewayUnavailable, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", contractx.ErrGatewayUnavailable)
	}

	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", contractx.ErrGatewayUnavailable)
	}
	return reply, nil
}
