package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sitewise-ai/sitewise/internal/config"
	"github.com/sitewise-ai/sitewise/internal/domain"
	"github.com/sitewise-ai/sitewise/internal/gateway"
	"github.com/sitewise-ai/sitewise/internal/repository"
	"go.uber.org/zap"
)

const defaultSystemPrompt = "You are a helpful assistant. Keep your answers concise, helpful, and professional."

const knowledgeBasePreamble = `You are a helpful support assistant for this website. You MUST answer questions ONLY based on the knowledge base provided below. Do NOT mention any pricing plans, products, or services that are not in the knowledge base. Do NOT try to sell anything. Simply help users find information from this website.

If the user asks about something not covered in the knowledge base, politely say you don't have that specific information and offer to help with something else from the website.

KNOWLEDGE BASE:
`

// CompletionStreamer issues a streaming completion against the hosted
// LLM gateway. Satisfied by *gateway.Client.
type CompletionStreamer interface {
	StreamCompletion(ctx context.Context, messages []gateway.Message, onDelta func(delta string) error) error
}

// ChatService proxies widget conversations to the LLM gateway,
// grounding answers on ingested site content when any is available.
type ChatService struct {
	cfg         *config.Config
	contentRepo *repository.ContentRepository
	gateway     CompletionStreamer
	logger      *zap.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	cfg *config.Config,
	contentRepo *repository.ContentRepository,
	gw CompletionStreamer,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		cfg:         cfg,
		contentRepo: contentRepo,
		gateway:     gw,
		logger:      logger,
	}
}

// Stream forwards a widget conversation to the gateway and invokes
// onDelta for every assistant text fragment in receipt order.
func (s *ChatService) Stream(ctx context.Context, req *domain.ChatRequest, onDelta func(delta string) error) error {
	if len(req.Messages) == 0 {
		return domain.ErrInvalidRequest
	}

	system := s.buildSystemPrompt(req)

	messages := make([]gateway.Message, 0, len(req.Messages)+1)
	messages = append(messages, gateway.Message{Role: "system", Content: system})
	for _, m := range req.Messages {
		messages = append(messages, gateway.Message{Role: m.Role, Content: m.Content})
	}

	return s.gateway.StreamCompletion(ctx, messages, onDelta)
}

// buildSystemPrompt assembles the system message. When completed
// content sources exist they become the knowledge base and the widget's
// custom instructions are ignored entirely, so site content can never
// mix with unrelated marketing copy. Without a knowledge base the
// caller-supplied instructions win, and the generic assistant prompt is
// the last resort.
func (s *ChatService) buildSystemPrompt(req *domain.ChatRequest) string {
	if kb := s.knowledgeBase(); kb != "" {
		return knowledgeBasePreamble + kb
	}
	if req.SystemPrompt != "" {
		return req.SystemPrompt
	}
	return defaultSystemPrompt
}

func (s *ChatService) knowledgeBase() string {
	sources, err := s.contentRepo.ListCompleted(s.cfg.Ingest.MaxSources)
	if err != nil {
		// A degraded answer beats no answer: fall through to the
		// instruction-based prompt.
		s.logger.Warn("failed to load content sources", zap.Error(err))
		return ""
	}
	if len(sources) == 0 {
		return ""
	}

	parts := make([]string, 0, len(sources))
	for _, src := range sources {
		content := src.Content
		if max := s.cfg.Ingest.MaxContentLen; max > 0 && len(content) > max {
			content = content[:max]
		}
		parts = append(parts, fmt.Sprintf("### %s\n%s", src.Name, content))
	}
	return strings.Join(parts, "\n\n")
}
