package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if r.Header.Get("X-Request-ID") != seen {
			t.Errorf("Expected header and context ids to match")
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("Expected a generated request id")
	}
	if rr.Header().Get("X-Request-ID") != seen {
		t.Errorf("Expected response header %q, got %q", seen, rr.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected %q, got %q", "abc-123", rr.Header().Get("X-Request-ID"))
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		wantStatus int
		wantNext   bool
	}{
		{"preflight", http.MethodOptions, http.StatusNoContent, false},
		{"post", http.MethodPost, http.StatusOK, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			h := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tc.method, "/api/chat", nil))

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			if called != tc.wantNext {
				t.Errorf("Expected next called=%v, got %v", tc.wantNext, called)
			}
			if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Errorf("Expected allow origin '*', got %q", rr.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := Logger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/chat", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("Expected status 418, got %v", fields["status"])
	}
	if fields["bytes"] != int64(5) {
		t.Errorf("Expected 5 bytes, got %v", fields["bytes"])
	}
	if fields["path"] != "/api/chat" {
		t.Errorf("Expected path /api/chat, got %v", fields["path"])
	}
}
