package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/client"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/render"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

type uiController interface {
	Snapshot() *session.State
	CreateChat() (string, error)
	SwitchChat(id string) error
	DeleteChat(id string) error
	RenameChat(id, name string) error
	Attach(files ...session.PendingFile) error
	RemoveAttachment(index int) error
	Send(text string) (<-chan struct{}, error)
	Regenerate(messageID string) (<-chan struct{}, error)
}

type broadcaster interface {
	Broadcast(msg interface{})
}

type renderEvent struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

type revealEvent struct {
	Type      string `json:"type"`
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
	HTML      string `json:"html"`
}

// UIHandler serves the browser client: the page itself and the actions its
// script posts back. Every change reaches the browser over the websocket.
type UIHandler struct {
	ctrl          uiController
	hub           broadcaster
	loc           *time.Location
	now           func() time.Time
	maxUploadSize int64
	logger        *zap.Logger
}

func NewUIHandler(ctrl uiController, hub broadcaster, loc *time.Location, maxUploadSize int64, logger *zap.Logger) *UIHandler {
	if loc == nil {
		loc = time.Local
	}
	return &UIHandler{
		ctrl:          ctrl,
		hub:           hub,
		loc:           loc,
		now:           time.Now,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

func (h *UIHandler) snapshot(state *session.State) render.Snapshot {
	return render.Project(state, h.now().In(h.loc))
}

// Page handles GET /.
func (h *UIHandler) Page(w http.ResponseWriter, r *http.Request) {
	html, err := render.HTML(h.snapshot(h.ctrl.Snapshot()))
	if err != nil {
		h.logger.Error("failed to render page", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to render page", r))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// Forward relays controller events to connected browsers.
func (h *UIHandler) Forward(e client.Event) {
	switch e.Type {
	case client.EventRender:
		snap := h.snapshot(e.State)
		html, err := render.AppHTML(snap)
		if err != nil {
			h.logger.Error("failed to render app", zap.Error(err))
			return
		}
		h.hub.Broadcast(renderEvent{Type: string(client.EventRender), Title: snap.Title, HTML: html})
	case client.EventReveal:
		h.hub.Broadcast(revealEvent{
			Type:      string(client.EventReveal),
			ChatID:    e.ChatID,
			MessageID: e.MessageID,
			HTML:      e.HTML,
		})
	}
}

func (h *UIHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	id, err := h.ctrl.CreateChat()
	if err != nil {
		h.controllerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *UIHandler) ActivateChat(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.SwitchChat(chi.URLParam(r, "id")); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UIHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	name := r.FormValue("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Name is required", r))
		return
	}
	if err := h.ctrl.RenameChat(chi.URLParam(r, "id"), name); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UIHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.DeleteChat(chi.URLParam(r, "id")); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAttachments handles POST /attachments with one or more "files" parts.
func (h *UIHandler) AddAttachments(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	uploads, err := readUploads(r.MultipartForm)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read files", r))
		return
	}

	files := make([]session.PendingFile, len(uploads))
	for i, u := range uploads {
		files[i] = session.PendingFile{Name: u.Name, ContentType: u.ContentType, Data: u.Data}
	}
	if err := h.ctrl.Attach(files...); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UIHandler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid attachment index", r))
		return
	}
	if err := h.ctrl.RemoveAttachment(index); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send handles POST /send. The reply is delivered over the websocket, so the
// request is answered as soon as the turn has started.
func (h *UIHandler) Send(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	if _, err := h.ctrl.Send(r.FormValue("message")); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *UIHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.ctrl.Regenerate(chi.URLParam(r, "id")); err != nil {
		h.controllerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *UIHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid form body", r))
		return false
	}
	return true
}

func (h *UIHandler) controllerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, client.ErrBusy):
		writeJSON(w, http.StatusConflict, errorResp("BUSY", "A reply is still in progress for this chat", r))
	case errors.Is(err, client.ErrNoActiveChat):
		writeJSON(w, http.StatusConflict, errorResp("NO_ACTIVE_CHAT", "Create a chat first", r))
	case errors.Is(err, client.ErrNotOpen):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("UNAVAILABLE", "Client is not ready", r))
	default:
		h.logger.Error("ui action failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Action failed", r))
	}
}
