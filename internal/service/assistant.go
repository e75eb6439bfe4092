package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks zenreader/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_assistant_service.go -package=mocks zenreader/internal/service AssistantService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"zenreader/internal/book"
	"zenreader/internal/catalog"
	"zenreader/internal/contextutil"
	"zenreader/internal/llm"
)

// Context budgets, in runes, for text sent to the LLM.
const (
	summaryContextLimit   = 15000
	askContextLimit       = 10000
	characterContextLimit = 20000
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Chat sends messages to the LLM and returns the reply.
	Chat(ctx context.Context, messages []llm.Message) (string, error)
	// StreamChat sends messages to the LLM and streams the reply via callback.
	StreamChat(ctx context.Context, messages []llm.Message, callback func(chunk string) error) error
}

// BookLookup resolves a book from the catalog.
type BookLookup interface {
	Book(id string) (book.Book, error)
}

// ChapterRef addresses a chapter of a book.
type ChapterRef struct {
	BookID       string
	ChapterIndex int
}

// Turn is one earlier exchange in a conversation about a chapter.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// AskRequest is a question about a chapter.
type AskRequest struct {
	ChapterRef
	Question string
	History  []Turn
}

// CharacterRequest asks for an analysis of a named character.
type CharacterRequest struct {
	ChapterRef
	Name string
}

// AssistantResponse carries the assistant's reply.
type AssistantResponse struct {
	Reply string
}

// AssistantService answers questions about the chapter being read.
type AssistantService interface {
	// Summarize produces a short summary of a chapter.
	Summarize(ctx context.Context, ref ChapterRef) (AssistantResponse, error)
	// Ask answers a question using the chapter as context.
	Ask(ctx context.Context, req AskRequest) (AssistantResponse, error)
	// StreamAsk answers a question and streams the reply via callback.
	StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) error
	// AnalyzeCharacter describes a character as seen in the chapter.
	AnalyzeCharacter(ctx context.Context, req CharacterRequest) (AssistantResponse, error)
}

type assistantService struct {
	llmClient LLMClient
	books     BookLookup
}

// NewAssistantService creates a new AssistantService. With a nil llmClient
// every call fails with ErrAssistantDisabled.
func NewAssistantService(llmClient LLMClient, books BookLookup) AssistantService {
	return &assistantService{
		llmClient: llmClient,
		books:     books,
	}
}

func (s *assistantService) Summarize(ctx context.Context, ref ChapterRef) (AssistantResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	if s.llmClient == nil {
		return AssistantResponse{}, ErrAssistantDisabled
	}

	chapter, err := s.chapter(ref)
	if err != nil {
		logger.WarnContext(ctx, "summary for unavailable chapter", "book_id", ref.BookID, "chapter_index", ref.ChapterIndex, "error", err)
		return AssistantResponse{}, err
	}

	prompt := fmt.Sprintf("请为小说章节 \"%s\" 生成一个简短的摘要（200字以内）。\n请关注主要情节发展和关键人物的行动。\n\n章节内容:\n%s",
		chapter.Title, truncateRunes(chapter.Content, summaryContextLimit))

	reply, err := s.llmClient.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM summary", "error", err)
		return AssistantResponse{}, externalError("summarize chapter", err)
	}

	logger.InfoContext(ctx, "chapter summarized", "book_id", ref.BookID, "chapter_index", ref.ChapterIndex, "reply_length", len(reply))
	return AssistantResponse{Reply: reply}, nil
}

func (s *assistantService) Ask(ctx context.Context, req AskRequest) (AssistantResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	if s.llmClient == nil {
		return AssistantResponse{}, ErrAssistantDisabled
	}

	messages, err := s.askMessages(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid ask request", "book_id", req.BookID, "error", err)
		return AssistantResponse{}, err
	}

	reply, err := s.llmClient.Chat(ctx, messages)
	if err != nil {
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err)
		return AssistantResponse{}, externalError("ask about chapter", err)
	}

	logger.InfoContext(ctx, "question answered", "book_id", req.BookID, "question_length", len(req.Question), "reply_length", len(reply))
	return AssistantResponse{Reply: reply}, nil
}

func (s *assistantService) StreamAsk(ctx context.Context, req AskRequest, callback func(chunk string) error) error {
	logger := contextutil.LoggerFromContext(ctx)
	if s.llmClient == nil {
		return ErrAssistantDisabled
	}

	messages, err := s.askMessages(req)
	if err != nil {
		logger.WarnContext(ctx, "invalid streaming ask request", "book_id", req.BookID, "error", err)
		return err
	}

	if err := s.llmClient.StreamChat(ctx, messages, callback); err != nil {
		logger.ErrorContext(ctx, "failed to stream LLM response", "error", err)
		return externalError("stream answer", err)
	}

	logger.InfoContext(ctx, "streaming question answered", "book_id", req.BookID, "question_length", len(req.Question))
	return nil
}

func (s *assistantService) AnalyzeCharacter(ctx context.Context, req CharacterRequest) (AssistantResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)
	if s.llmClient == nil {
		return AssistantResponse{}, ErrAssistantDisabled
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return AssistantResponse{}, invalidField("name", "cannot be empty")
	}
	chapter, err := s.chapter(req.ChapterRef)
	if err != nil {
		return AssistantResponse{}, err
	}

	prompt := fmt.Sprintf("基于以下文本，分析角色 \"%s\" 的性格特征、动机以及在当前情节中的作用。\n\n文本上下文:\n%s",
		name, truncateRunes(chapter.Content, characterContextLimit))

	reply, err := s.llmClient.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if err != nil {
		logger.ErrorContext(ctx, "failed to get character analysis", "error", err)
		return AssistantResponse{}, externalError("analyze character", err)
	}
	return AssistantResponse{Reply: reply}, nil
}

func (s *assistantService) askMessages(req AskRequest) ([]llm.Message, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, invalidField("question", "cannot be empty")
	}

	chapter, err := s.chapter(req.ChapterRef)
	if err != nil {
		return nil, err
	}

	system := "你是一个文学助手，正在陪伴用户阅读这本小说。\n请根据提供的章节内容回答用户的问题。\n如果用户问的问题不在当前章节范围内，请礼貌告知。\n当前阅读内容片段：\n" +
		truncateRunes(chapter.Content, askContextLimit)

	messages := make([]llm.Message, 0, len(req.History)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for i, turn := range req.History {
		switch turn.Role {
		case llm.RoleUser, llm.RoleAssistant:
		default:
			return nil, invalidField(fmt.Sprintf("history[%d].role", i), "must be %s or %s", llm.RoleUser, llm.RoleAssistant)
		}
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Text})
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})
	return messages, nil
}

func (s *assistantService) chapter(ref ChapterRef) (book.Chapter, error) {
	b, err := s.books.Book(ref.BookID)
	if errors.Is(err, catalog.ErrUnknownBook) {
		return book.Chapter{}, fmt.Errorf("book %s: %w", ref.BookID, ErrNotFound)
	}
	if err != nil {
		return book.Chapter{}, fmt.Errorf("failed to look up book: %w", err)
	}

	chapter, ok := b.Chapter(ref.ChapterIndex)
	if !ok {
		return book.Chapter{}, invalidField("chapterIndex", "must be between 0 and %d", len(b.Chapters)-1)
	}
	return chapter, nil
}

// truncateRunes keeps at most limit runes of s.
func truncateRunes(s string, limit int) string {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
