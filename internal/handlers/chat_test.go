package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/services"
)

type fakeReplier struct {
	reply   string
	message string
	history []models.HistoryEntry
	uploads []services.Upload
	called  bool
}

func (f *fakeReplier) Reply(_ context.Context, message string, history []models.HistoryEntry, uploads []services.Upload) string {
	f.called = true
	f.message = message
	f.history = history
	f.uploads = uploads
	return f.reply
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(f.data)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func decodeReply(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", rr.Header().Get("Content-Type"))
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Reply
}

func TestChatHandler_MultipartWithFiles(t *testing.T) {
	replier := &fakeReplier{reply: "Here you go"}
	h := NewChatHandler(replier, 1<<20, zap.NewNop())

	body, contentType := multipartBody(t, map[string]string{
		"message": "what is in this picture",
		"history": `[{"role":"user","content":"hi"},{"role":"assistant","content":"hello"}]`,
	}, []formFile{
		{name: "board.png", contentType: "image/png", data: []byte{0x89, 'P', 'N', 'G'}},
		{name: "notes.txt", contentType: "text/plain", data: []byte("notes")},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	if reply := decodeReply(t, rr); reply != "Here you go" {
		t.Errorf("Expected reply %q, got %q", "Here you go", reply)
	}
	if replier.message != "what is in this picture" {
		t.Errorf("Expected message to be forwarded, got %q", replier.message)
	}
	if len(replier.history) != 2 || replier.history[1].Content.PlainText() != "hello" {
		t.Errorf("Expected two history entries, got %+v", replier.history)
	}
	if len(replier.uploads) != 2 {
		t.Fatalf("Expected 2 uploads, got %d", len(replier.uploads))
	}
	if !replier.uploads[0].IsImage() || replier.uploads[0].Name != "board.png" {
		t.Errorf("Expected first upload to be the image, got %+v", replier.uploads[0])
	}
}

func TestChatHandler_LenientHistory(t *testing.T) {
	tests := []struct {
		name    string
		history string
	}{
		{"missing", ""},
		{"not json", "{{{"},
		{"wrong shape", `{"role":"user"}`},
		{"bad content", `[{"role":"user","content":42}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			replier := &fakeReplier{reply: "ok"}
			h := NewChatHandler(replier, 1<<20, zap.NewNop())

			fields := map[string]string{"message": "hi"}
			if tc.history != "" {
				fields["history"] = tc.history
			}
			body, contentType := multipartBody(t, fields, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
			req.Header.Set("Content-Type", contentType)
			rr := httptest.NewRecorder()

			h.Chat(rr, req)

			if reply := decodeReply(t, rr); reply != "ok" {
				t.Errorf("Expected reply %q, got %q", "ok", reply)
			}
			if len(replier.history) != 0 {
				t.Errorf("Expected empty history, got %d entries", len(replier.history))
			}
		})
	}
}

func TestChatHandler_URLEncodedForm(t *testing.T) {
	replier := &fakeReplier{reply: "ok"}
	h := NewChatHandler(replier, 1<<20, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("message=hello"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	decodeReply(t, rr)
	if replier.message != "hello" {
		t.Errorf("Expected message %q, got %q", "hello", replier.message)
	}
}

func TestChatHandler_TooLargeIsInBand(t *testing.T) {
	replier := &fakeReplier{reply: "unused"}
	h := NewChatHandler(replier, 64, zap.NewNop())

	body, contentType := multipartBody(t, map[string]string{"message": "hi"}, []formFile{
		{name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{1}, 4096)},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	h.Chat(rr, req)

	reply := decodeReply(t, rr)
	if !strings.HasPrefix(reply, "⚠️ Error: ") {
		t.Errorf("Expected in-band error reply, got %q", reply)
	}
	if replier.called {
		t.Errorf("Expected the model not to be called")
	}
}

func TestErrorResp(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-1")
	rr := httptest.NewRecorder()

	writeJSON(rr, http.StatusConflict, errorResp("BUSY", "Chat is busy", req))

	if rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rr.Code)
	}
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Error.Code != "BUSY" || resp.Error.RequestID != "req-1" {
		t.Errorf("Unexpected error body: %+v", resp.Error)
	}
}
