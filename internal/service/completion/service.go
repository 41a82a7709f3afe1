package completion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/hyrx/studio-backend/internal/config"
	"github.com/hyrx/studio-backend/internal/model/chat"
)

// Service generates assistant replies through the configured model chain.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the prompt/model chain for the studio assistant.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{chatModel: chatModel, cfg: cfg, chain: runnable}, nil
}

// Complete runs one completion over the recent transcript plus the new
// user turn and returns the assistant's reply text.
func (s *Service) Complete(ctx context.Context, history []chat.Message, userMessage string) (string, error) {
	input := map[string]any{
		"system":  systemPrompt,
		"history": s.buildHistory(history),
		"query":   userMessage,
	}

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", Classify(fmt.Errorf("failed to run completion chain: %w", err))
	}
	if response == nil || response.Content == "" {
		return "", ErrEmptyReply
	}

	slog.Debug("completion generated", "length", len(response.Content))
	return response.Content, nil
}

// buildHistory converts the most recent transcript turns to provider
// messages. Only the trailing HistorySize turns are forwarded.
func (s *Service) buildHistory(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	limit := s.cfg.HistorySize
	if limit <= 0 {
		limit = 10
	}

	startIdx := 0
	if len(messages) > limit {
		startIdx = len(messages) - limit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Role {
		case chat.RoleUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		case chat.RoleSystem:
			history = append(history, schema.SystemMessage(msg.Content))
		}
	}

	return history
}
