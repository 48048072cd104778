package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/models"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/session"
)

func strPtr(s string) *string { return &s }

func TestClientChat_PostsMultipart(t *testing.T) {
	var (
		gotMessage string
		gotHistory []models.HistoryEntry
		gotFiles   []string
		gotTypes   []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotMessage = r.FormValue("message")
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("history")), &gotHistory))
		for _, fh := range r.MultipartForm.File["files"] {
			gotFiles = append(gotFiles, fh.Filename)
			gotTypes = append(gotTypes, fh.Header.Get("Content-Type"))
			f, _ := fh.Open()
			io.Copy(io.Discard, f)
			f.Close()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Hello from the model"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	reply := c.Chat(context.Background(), "hi", []models.HistoryEntry{
		{Role: "user", Content: models.TextContent("before")},
	}, []session.PendingFile{
		{Name: "a.png", ContentType: "image/png", Data: []byte{1, 2}},
		{Name: "notes.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	})

	assert.Equal(t, "Hello from the model", reply)
	assert.Equal(t, "hi", gotMessage)
	require.Len(t, gotHistory, 1)
	assert.Equal(t, "before", gotHistory[0].Content.PlainText())
	assert.Equal(t, []string{"a.png", "notes.pdf"}, gotFiles)
	assert.Equal(t, []string{"image/png", "application/pdf"}, gotTypes)
}

func TestClientChat_EmptyHistoryIsArray(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.FormValue("history")
		w.Write([]byte(`{"reply":"ok"}`))
	}))
	defer srv.Close()

	NewClient(srv.URL, time.Second, zap.NewNop()).Chat(context.Background(), "hi", nil, nil)
	assert.Equal(t, "[]", raw)
}

func TestClientChat_Fallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty reply", `{"reply":""}`, ReplyEmpty},
		{"missing reply", `{}`, ReplyEmpty},
		{"not json", `<html>502</html>`, ReplyUnavailable},
		{"in-band error passes through", `{"reply":"⚠️ Error: quota"}`, "⚠️ Error: quota"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			got := NewClient(srv.URL, time.Second, zap.NewNop()).Chat(context.Background(), "hi", nil, nil)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClientChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	got := NewClient(url, time.Second, zap.NewNop()).Chat(context.Background(), "hi", nil, nil)
	assert.Equal(t, ReplyUnavailable, got)
}

func TestBuildHistory(t *testing.T) {
	messages := []*session.Message{
		{Role: session.RoleUser, Text: "hello"},
		{Role: session.RoleAssistant, Text: "hi there"},
		{Role: session.RoleUser, Files: []session.FileRef{
			{Name: "a.png", Data: strPtr("data:image/png;base64,AA==")},
			{Name: "notes.pdf"},
		}},
		{Role: session.RoleUser, Files: []session.FileRef{{Name: "doc.txt"}}},
		{Role: session.RoleUser, Text: "caption", Files: []session.FileRef{{Name: "b.png", Data: strPtr("data:image/png;base64,AQ==")}}},
		{Role: session.RoleAssistant},
	}

	got := BuildHistory(messages)

	require.Len(t, got, 5)
	assert.Equal(t, models.HistoryEntry{Role: "user", Content: models.TextContent("hello")}, got[0])
	assert.Equal(t, models.HistoryEntry{Role: "assistant", Content: models.TextContent("hi there")}, got[1])

	assert.True(t, got[2].Content.IsParts())
	assert.Equal(t, []string{"data:image/png;base64,AA=="}, got[2].Content.Images())
	assert.Equal(t, "Attached files: notes.pdf", got[2].Content.PlainText())

	assert.False(t, got[3].Content.IsParts(), "name-only files fall back to text")
	assert.Equal(t, "Attached files: doc.txt", got[3].Content.PlainText())

	assert.Equal(t, models.TextContent("caption"), got[4].Content)
}
