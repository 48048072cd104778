package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/services"
)

// multipartMemory is how much of a form is buffered in memory before the
// rest spills to temporary files.
const multipartMemory = 8 << 20

type chatReplier interface {
	Reply(ctx context.Context, message string, history []models.HistoryEntry, uploads []services.Upload) string
}

type ChatHandler struct {
	chat          chatReplier
	maxUploadSize int64
	logger        *zap.Logger
}

func NewChatHandler(chat chatReplier, maxUploadSize int64, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chat:          chat,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Chat handles POST /api/chat. It always answers 200 with {"reply": ...};
// failures are reported inside the reply text.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			h.logger.Warn("invalid chat form", zap.Error(err))
			writeJSON(w, http.StatusOK, models.ChatResponse{Reply: services.ErrorReplyPrefix + err.Error()})
			return
		}
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusOK, models.ChatResponse{Reply: services.ErrorReplyPrefix + err.Error()})
			return
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	message := r.FormValue("message")
	history := parseHistory(r.FormValue("history"))

	uploads, err := readUploads(r.MultipartForm)
	if err != nil {
		h.logger.Warn("failed to read uploads", zap.Error(err))
		writeJSON(w, http.StatusOK, models.ChatResponse{Reply: services.ErrorReplyPrefix + err.Error()})
		return
	}

	var total int
	for _, u := range uploads {
		total += len(u.Data)
	}
	h.logger.Info("chat request",
		zap.Int("files", len(uploads)),
		zap.String("upload_size", humanize.Bytes(uint64(total))),
		zap.Int("history", len(history)),
		zap.Int("message_len", len(message)),
	)

	reply := h.chat.Reply(r.Context(), message, history, uploads)
	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

// parseHistory decodes the history field. Anything unparseable counts as no
// history at all.
func parseHistory(raw string) []models.HistoryEntry {
	if raw == "" {
		return nil
	}
	var history []models.HistoryEntry
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		return nil
	}
	return history
}

func readUploads(form *multipart.Form) ([]services.Upload, error) {
	if form == nil {
		return nil, nil
	}

	headers := form.File["files"]
	uploads := make([]services.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		uploads = append(uploads, services.Upload{
			Name:        fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return uploads, nil
}
