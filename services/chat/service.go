package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upb/research-assistant/config"
	"github.com/upb/research-assistant/internal/prompt"
	"github.com/upb/research-assistant/internal/rag"
	"github.com/upb/research-assistant/models"
	"github.com/upb/research-assistant/services"
	"github.com/upb/research-assistant/services/providers"
	"go.uber.org/zap"
)

// ChatService grounds a conversation in the corpus and streams the model reply
type ChatService struct {
	retriever  rag.Retriever
	corpusSize int
	registry   *providers.Registry
	recorder   TurnRecorder
	cfg        config.ChatConfig
	logger     *zap.Logger
}

// NewChatService creates a new chat service. recorder may be nil.
func NewChatService(
	retriever rag.Retriever,
	corpusSize int,
	registry *providers.Registry,
	recorder TurnRecorder,
	cfg config.ChatConfig,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		retriever:  retriever,
		corpusSize: corpusSize,
		registry:   registry,
		recorder:   recorder,
		cfg:        cfg,
		logger:     logger,
	}
}

// Model returns the configured provider/model identifier
func (s *ChatService) Model() string {
	return s.cfg.Model
}

// Prepare validates the conversation, retrieves documents for the latest
// message and renders the system instruction. No provider is contacted.
func (s *ChatService) Prepare(ctx context.Context, messages []providers.Message) (*Turn, error) {
	if len(messages) == 0 {
		return nil, services.ErrNoMessages
	}

	last := messages[len(messages)-1]
	if last.Content == "" {
		return nil, services.ErrInvalidMessageFormat
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn := &Turn{
		Messages:  messages,
		Query:     last.Content,
		StartTime: time.Now(),
	}

	turn.Results = s.retriever.Search(turn.Query)
	turn.Citations = models.CitationsFor(turn.Results)

	systemPrompt, err := rag.SystemPrompt(turn.Results, s.corpusSize)
	if err != nil {
		return nil, services.WrapInternal("failed to build system prompt", err)
	}
	turn.SystemPrompt = systemPrompt

	if turn.Signals = prompt.Screen(turn.Query); len(turn.Signals) > 0 {
		s.logger.Warn("query contains instruction override phrasing",
			zap.Any("signals", turn.Signals))
	}

	s.logger.Debug("prepared chat turn",
		zap.Int("messages", len(messages)),
		zap.Int("results", len(turn.Results)))

	return turn, nil
}

// Stream sends the grounded conversation to the configured provider and
// passes reply text to onChunk as it arrives. Failures are not retried.
func (s *ChatService) Stream(ctx context.Context, turn *Turn, onChunk ChunkHandler) error {
	return s.call(ctx, turn, "streaming chat completion", func(ctx context.Context, p providers.Provider, req *providers.ChatRequest) error {
		return p.ChatCompletionStream(ctx, req, func(chunk *providers.StreamChunk) error {
			if chunk.Content == "" {
				return nil
			}
			return onChunk(chunk.Content)
		})
	})
}

// Complete sends the grounded conversation to the configured provider and
// returns the whole reply at once. Failures are not retried.
func (s *ChatService) Complete(ctx context.Context, turn *Turn) (*providers.ChatResponse, error) {
	var resp *providers.ChatResponse
	err := s.call(ctx, turn, "requesting chat completion", func(ctx context.Context, p providers.Provider, req *providers.ChatRequest) error {
		var err error
		resp, err = p.ChatCompletion(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

type completionFunc func(ctx context.Context, provider providers.Provider, req *providers.ChatRequest) error

// call resolves the configured model, runs fn under the chat timeout and
// records the turn. Errors come back as external domain errors.
func (s *ChatService) call(ctx context.Context, turn *Turn, action string, fn completionFunc) error {
	provider, model, err := s.registry.Resolve(s.cfg.Model)
	if err != nil {
		s.logger.Error("no provider for configured model",
			zap.String("model", s.cfg.Model),
			zap.Error(err))
		s.record(turn, "", s.cfg.Model, err)
		return services.WrapExternal(services.ErrProviderUnavailable.Message, err)
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	req := &providers.ChatRequest{
		Model:       model,
		Messages:    s.buildMessages(turn),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Metadata:    map[string]string{"request_id": turn.RequestID},
	}

	s.logger.Info(action,
		zap.String("request_id", turn.RequestID),
		zap.String("provider", provider.Name()),
		zap.String("model", model),
		zap.Int("citations", len(turn.Citations)))

	err = fn(ctx, provider, req)

	s.record(turn, provider.Name(), model, err)

	if err != nil {
		s.logger.Error("chat completion failed",
			zap.String("request_id", turn.RequestID),
			zap.String("provider", provider.Name()),
			zap.Bool("retryable", providers.IsRetryable(err)),
			zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return services.WrapExternal(services.ErrProviderTimeout.Message, err)
		}
		return services.WrapExternal(fmt.Sprintf("%s completion failed", provider.Name()), err)
	}

	return nil
}

// buildMessages prepends the system instruction to the conversation
func (s *ChatService) buildMessages(turn *Turn) []providers.Message {
	messages := make([]providers.Message, 0, len(turn.Messages)+1)
	messages = append(messages, providers.Message{
		Role:    providers.RoleSystem,
		Content: turn.SystemPrompt,
	})
	return append(messages, turn.Messages...)
}

func (s *ChatService) record(turn *Turn, provider, model string, err error) {
	if s.recorder == nil {
		return
	}

	record := models.NewChatTurn(turn.RequestID, turn.Query, provider, model, turn.CitationIDs())
	record.LatencyMs = int(time.Since(turn.StartTime).Milliseconds())
	if err != nil {
		record.MarkFailed(err)
	}

	if recErr := s.recorder.Record(record); recErr != nil {
		s.logger.Warn("failed to record chat turn",
			zap.String("request_id", turn.RequestID),
			zap.Error(recErr))
	}
}
