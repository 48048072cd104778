// Package gateway is the client side of POST /api/chat.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

// Replies shown in place of a model answer when the gateway cannot be used.
const (
	ReplyUnavailable = "⚠️ Backend unavailable — check if server is running."
	ReplyEmpty       = "⚠️ No reply from backend"
)

type Client struct {
	url    string
	http   *http.Client
	logger *zap.Logger
}

func NewClient(url string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		url:    url,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Chat posts one turn and returns the reply text. It always returns something
// displayable: transport and decoding failures map to ReplyUnavailable, an
// empty answer to ReplyEmpty.
func (c *Client) Chat(ctx context.Context, message string, history []models.HistoryEntry, files []session.PendingFile) string {
	body, contentType, err := encodeForm(message, history, files)
	if err != nil {
		c.logger.Error("failed to encode chat request", zap.Error(err))
		return ReplyUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		c.logger.Error("failed to create chat request", zap.Error(err))
		return ReplyUnavailable
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("gateway request failed", zap.String("url", c.url), zap.Error(err))
		return ReplyUnavailable
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("failed to read gateway response", zap.Error(err))
		return ReplyUnavailable
	}

	var parsed models.ChatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Warn("gateway returned a non-JSON body",
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return ReplyUnavailable
	}
	if parsed.Reply == "" {
		return ReplyEmpty
	}
	return parsed.Reply
}

func encodeForm(message string, history []models.HistoryEntry, files []session.PendingFile) (*bytes.Buffer, string, error) {
	if history == nil {
		history = []models.HistoryEntry{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, "", fmt.Errorf("encode history: %w", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("message", message); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("history", string(historyJSON)); err != nil {
		return nil, "", err
	}

	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// BuildHistory converts prior transcript messages to the wire history. A
// message with files and no text is sent as content parts: images as
// image_url parts, other files as a text part naming them. Everything else
// is sent as its text. Messages with neither text nor files are dropped.
func BuildHistory(messages []*session.Message) []models.HistoryEntry {
	history := make([]models.HistoryEntry, 0, len(messages))
	for _, m := range messages {
		switch {
		case m.HasFiles() && !m.HasText():
			history = append(history, models.HistoryEntry{Role: string(m.Role), Content: filesContent(m.Files)})
		case m.HasText():
			history = append(history, models.HistoryEntry{Role: string(m.Role), Content: models.TextContent(m.Text)})
		}
	}
	return history
}

func filesContent(files []session.FileRef) models.HistoryContent {
	var parts []models.ContentPart
	var names []string
	for _, f := range files {
		if f.IsImage() {
			parts = append(parts, models.ImagePart(*f.Data))
			continue
		}
		names = append(names, f.Name)
	}

	described := ""
	if len(names) > 0 {
		described = "Attached files: " + strings.Join(names, ", ")
	}
	if len(parts) == 0 {
		return models.TextContent(described)
	}
	if described != "" {
		parts = append(parts, models.TextPart(described))
	}
	return models.PartsContent(parts...)
}
