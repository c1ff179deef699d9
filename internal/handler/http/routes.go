package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Post("/api/session", h.openSession)
		r.Get("/api/version", h.getVersion)
	})

	// routes guarded by a session token
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/chat/message", h.sendMessage)
		r.Get("/api/chat/history", h.getHistory)
		r.Delete("/api/chat/history", h.clearHistory)
	})

	return router
}
