package web

import (
	"net/http"
	"strings"

	"llm-chat/internal/llm"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// apiPrefix marks paths that never fall through to static assets.
const apiPrefix = "/api/"

// NewRouter wires the chat endpoint and the static asset fallback.
func NewRouter(chat *llm.Handler, assets http.Handler, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Register all the API routes from the handler
	chat.RegisterRoutes(r)

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// Anything not routed above is either a static asset or an unknown API path.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if isAssetPath(r.URL.Path) {
			assets.ServeHTTP(w, r)
			return
		}
		writeText(w, http.StatusNotFound, "Not found")
	})

	return r
}

func isAssetPath(path string) bool {
	return path == "/" || !strings.HasPrefix(path, apiPrefix)
}

// writeText sends a plain-text response.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(message))
}
