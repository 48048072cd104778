package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/llm"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/metrics"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
)

// ErrorReplyPrefix starts every in-band failure reply.
const ErrorReplyPrefix = "⚠️ Error: "

// ErrEmptyTurn is reported when neither the text nor any upload of a request
// could be sent to the model.
var ErrEmptyTurn = errors.New("nothing to answer: no message and no readable attachments")

// Upload is one file received with a chat request.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

func (u Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}

func (u Upload) DataURL() string {
	return "data:" + u.ContentType + ";base64," + base64.StdEncoding.EncodeToString(u.Data)
}

type ChatService struct {
	provider     llm.Provider
	retry        RetryPolicy
	systemPrompt string
	extractor    *FileExtractService
	metrics      *metrics.Gateway
	logger       *zap.Logger
}

func NewChatService(
	provider llm.Provider,
	retryDelay time.Duration,
	systemPrompt string,
	extractor *FileExtractService,
	m *metrics.Gateway,
	logger *zap.Logger,
) *ChatService {
	s := &ChatService{
		provider:     provider,
		systemPrompt: systemPrompt,
		extractor:    extractor,
		metrics:      m,
		logger:       logger,
	}
	s.retry = RetryPolicy{
		Delay: retryDelay,
		OnRetry: func(err error) {
			s.metrics.Retries.Inc()
			s.logger.Warn("rate limit hit, retrying once",
				zap.Duration("delay", retryDelay),
				zap.Error(err),
			)
		},
	}
	return s
}

// Reply answers one chat request. It never fails: errors come back as a reply
// starting with ErrorReplyPrefix.
func (s *ChatService) Reply(ctx context.Context, message string, history []models.HistoryEntry, uploads []Upload) string {
	turn := s.turnMessages(message, uploads)
	if len(turn) == 0 {
		s.metrics.Requests.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Warn("chat request has nothing to send", zap.Int("uploads", len(uploads)))
		return ErrorReplyPrefix + ErrEmptyTurn.Error()
	}
	messages := append(s.priorMessages(history, len(turn)), turn...)

	reply, err := s.retry.Do(ctx, s.call(messages))
	if err != nil {
		s.metrics.Requests.WithLabelValues(metrics.OutcomeError).Inc()
		s.logger.Error("chat request failed", zap.String("provider", s.provider.Name()), zap.Error(err))
		return ErrorReplyPrefix + err.Error()
	}

	s.metrics.Requests.WithLabelValues(metrics.OutcomeOK).Inc()
	return reply
}

func (s *ChatService) call(messages []llm.Message) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		start := time.Now()
		reply, err := s.provider.Chat(ctx, messages)
		s.metrics.UpstreamLatency.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
		return reply, err
	}
}

// BuildMessages assembles the model input: system prompt, prior turns, the
// current text, then one user message per usable upload.
func (s *ChatService) BuildMessages(message string, history []models.HistoryEntry, uploads []Upload) []llm.Message {
	turn := s.turnMessages(message, uploads)
	return append(s.priorMessages(history, len(turn)), turn...)
}

// priorMessages is the system prompt followed by the usable history entries,
// leaving room for extra messages after them.
func (s *ChatService) priorMessages(history []models.HistoryEntry, extra int) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+extra+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: s.systemPrompt})

	for _, h := range history {
		role := h.Role
		if role != llm.RoleAssistant {
			role = llm.RoleUser
		}
		msg := llm.Message{Role: role, Content: h.Content.PlainText(), Images: h.Content.Images()}
		if msg.Content == "" && len(msg.Images) == 0 {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}

// turnMessages converts the current request: its text, then one message per
// usable upload.
func (s *ChatService) turnMessages(message string, uploads []Upload) []llm.Message {
	var messages []llm.Message
	if strings.TrimSpace(message) != "" {
		messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})
	}

	for _, u := range uploads {
		s.metrics.UploadBytes.Add(float64(len(u.Data)))
		if msg, ok := s.uploadMessage(u); ok {
			messages = append(messages, msg)
		}
	}

	return messages
}

func (s *ChatService) uploadMessage(u Upload) (llm.Message, bool) {
	if u.IsImage() {
		s.metrics.Uploads.WithLabelValues("image").Inc()
		return llm.Message{Role: llm.RoleUser, Images: []string{u.DataURL()}}, true
	}

	if s.extractor.Supports(u.Name) {
		text, err := s.extractor.ExtractText(u.Name, u.Data)
		if err == nil {
			s.metrics.Uploads.WithLabelValues("document").Inc()
			return llm.Message{
				Role:    llm.RoleUser,
				Content: fmt.Sprintf("Contents of the attached file %q:\n\n%s", u.Name, text),
			}, true
		}
		s.logger.Warn("could not extract text from upload",
			zap.String("file", u.Name),
			zap.String("size", humanize.Bytes(uint64(len(u.Data)))),
			zap.Error(err),
		)
	} else {
		s.logger.Info("skipping unsupported upload",
			zap.String("file", u.Name),
			zap.String("content_type", u.ContentType),
			zap.String("size", humanize.Bytes(uint64(len(u.Data)))),
		)
	}

	s.metrics.Uploads.WithLabelValues("skipped").Inc()
	return llm.Message{}, false
}
