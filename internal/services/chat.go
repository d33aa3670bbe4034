package services

import (
	"strings"
	"time"

	"github.com/yungbote/mentamind-backend/internal/analysis"
	"github.com/yungbote/mentamind-backend/internal/observability"
	"github.com/yungbote/mentamind-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentamind-backend/internal/platform/llm"
	"github.com/yungbote/mentamind-backend/internal/platform/logger"
	"github.com/yungbote/mentamind-backend/internal/safety"
)

const (
	chatMaxTokens      = 400
	chatHistoryWindow  = 10
	DefaultTemperature = 0.7

	chatEmptyReply    = "I'm here for you. Could you tell me more about how you're feeling?"
	chatFallbackReply = "I'm having a bit of trouble connecting right now, but I'm still here for you. Could you share what's on your mind?"
)

type ChatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

type ChatReply struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Crisis    bool      `json:"crisis,omitempty"`
}

// AnalysisEnqueuer accepts conversations for background emotion analysis.
type AnalysisEnqueuer interface {
	Enqueue(job analysis.Job) bool
}

type ChatService interface {
	// Respond validates the message, short-circuits crisis language with the
	// resource message, and otherwise returns a generated reply. It never
	// surfaces completion failures to the caller.
	Respond(dbc dbctx.Context, identity string, req ChatRequest) (*ChatReply, error)
}

type chatService struct {
	log         *logger.Logger
	classifier  *safety.Classifier
	llm         llm.Completer
	queue       AnalysisEnqueuer
	metrics     *observability.Metrics
	temperature float64
	now         func() time.Time
}

func NewChatService(
	baseLog *logger.Logger,
	classifier *safety.Classifier,
	completer llm.Completer,
	queue AnalysisEnqueuer,
	m *observability.Metrics,
	temperature float64,
) ChatService {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &chatService{
		log:         baseLog.With("service", "ChatService"),
		classifier:  classifier,
		llm:         completer,
		queue:       queue,
		metrics:     m,
		temperature: temperature,
		now:         time.Now,
	}
}

func (s *chatService) Respond(dbc dbctx.Context, identity string, req ChatRequest) (*ChatReply, error) {
	message, err := validateContent("Message", req.Message)
	if err != nil {
		return nil, err
	}

	if s.classifier.CheckForCrisis(message) {
		s.metrics.IncCrisisDetection("chat")
		s.log.Info("crisis language in chat; serving resources", "identity", identity, "region", s.classifier.Region())
		return &ChatReply{Message: s.classifier.Response(), Timestamp: s.now().UTC(), Crisis: true}, nil
	}

	history := cleanHistory(req.History)
	window := history
	if len(window) > chatHistoryWindow {
		window = window[len(window)-chatHistoryWindow:]
	}
	turns := make([]llm.Message, 0, len(window)+1)
	turns = append(turns, window...)
	turns = append(turns, llm.Message{Role: llm.RoleUser, Content: message})

	reply, err := s.llm.Complete(dbc.Ctx, llm.CompletionRequest{
		System:      chatSystemPrompt,
		History:     turns,
		MaxTokens:   chatMaxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		s.log.Warn("chat completion failed; serving fallback", "identity", identity, "error", err)
		return &ChatReply{Message: chatFallbackReply, Timestamp: s.now().UTC()}, nil
	}
	if strings.TrimSpace(reply) == "" {
		reply = chatEmptyReply
	}

	userMessages := 1
	for _, m := range history {
		if m.Role == llm.RoleUser {
			userMessages++
		}
	}
	if analysis.ShouldRunAnalysis(userMessages) && s.queue != nil {
		conversation := make([]llm.Message, 0, len(history)+2)
		conversation = append(conversation, history...)
		conversation = append(conversation,
			llm.Message{Role: llm.RoleUser, Content: message},
			llm.Message{Role: llm.RoleAssistant, Content: reply},
		)
		s.queue.Enqueue(analysis.Job{SessionID: identity, Turns: conversation})
	}

	return &ChatReply{Message: reply, Timestamp: s.now().UTC()}, nil
}

// cleanHistory keeps only user and assistant turns with content.
func cleanHistory(in []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(in))
	for _, m := range in {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != llm.RoleUser && role != llm.RoleAssistant {
			continue
		}
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, llm.Message{Role: role, Content: m.Content})
	}
	return out
}
