package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/hearthglen/chronicler/internal/narrative"
	apperrors "github.com/hearthglen/chronicler/internal/platform/errors"
)

// maxToolRounds caps how many tool-call exchanges a single turn may run
// before the client gives up waiting for final text.
const maxToolRounds = 8

// ClientConfig configures the OpenAI-backed generator.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client generates narration through the OpenAI chat completions API,
// running any requested tool rounds before returning the final text.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewClient builds an OpenAI-backed generator.
func NewClient(cfg ClientConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.CodeUnknown, "api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// Generate runs one narration turn. The assembled context rides in a
// single system message after the table rules, oldest block first, so the
// model reads the session in chronological order.
func (c *Client) Generate(ctx context.Context, req Request) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	if contextText := renderContext(req.Context); contextText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: contextText,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Input,
	})

	var reply Reply
	for round := 0; round <= maxToolRounds; round++ {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    toolDefinitions(req.Tools),
		})
		if err != nil {
			return Reply{}, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return Reply{}, apperrors.New(apperrors.CodeUnknown, "chat completion returned no choices")
		}

		choice := resp.Choices[0].Message
		if len(choice.ToolCalls) == 0 {
			reply.Text = choice.Content
			return reply, nil
		}
		if req.Invoke == nil {
			return Reply{}, apperrors.New(apperrors.CodeToolNotFound, "generator requested tools but none are wired")
		}

		messages = append(messages, choice)
		for _, call := range choice.ToolCalls {
			result, err := req.Invoke(ctx, call.Function.Name, call.Function.Arguments)
			if err != nil {
				c.logger.Warn().Err(err).Str("tool", call.Function.Name).Msg("tool invocation failed")
				// Surface the failure to the model instead of aborting the
				// turn; it can narrate around a bad roll request.
				result = fmt.Sprintf(`{"error":%q}`, err.Error())
			}
			reply.ToolCalls = append(reply.ToolCalls, ToolCall{
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
				Result:    result,
			})
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	return Reply{}, apperrors.New(apperrors.CodeUnknown, "tool round limit exceeded")
}

// toolDefinitions converts registered tools to the wire format.
func toolDefinitions(tools []Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	defs := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		params := tool.Schema
		if len(params) == 0 {
			params = json.RawMessage(`{"type":"object","properties":{}}`)
		}
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return defs
}

// renderContext joins assembled blocks into one document, already in
// chronological order.
func renderContext(pkg narrative.Package) string {
	var b strings.Builder
	for _, block := range pkg.Blocks {
		b.WriteString(block.Text)
		if !strings.HasSuffix(block.Text, "\n") {
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
