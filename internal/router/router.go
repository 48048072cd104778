package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/handlers"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/middleware"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/websocket"
)

// New builds the gateway router. The chat endpoint is its only route.
func New(chatHandler *handlers.ChatHandler, logger *zap.Logger, corsOrigin string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigin))

	r.Post("/api/chat", chatHandler.Chat)

	return r
}

// NewUI builds the router for the browser client.
func NewUI(uiHandler *handlers.UIHandler, wsHub *websocket.Hub, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/", uiHandler.Page)
	r.Get("/ws", wsHub.HandleWebSocket)

	r.Route("/chats", func(r chi.Router) {
		r.Post("/", uiHandler.CreateChat)
		r.Post("/{id}/activate", uiHandler.ActivateChat)
		r.Post("/{id}/rename", uiHandler.RenameChat)
		r.Delete("/{id}", uiHandler.DeleteChat)
	})

	r.Post("/attachments", uiHandler.AddAttachments)
	r.Delete("/attachments/{index}", uiHandler.RemoveAttachment)
	r.Post("/send", uiHandler.Send)
	r.Post("/messages/{id}/regenerate", uiHandler.Regenerate)

	return r
}
