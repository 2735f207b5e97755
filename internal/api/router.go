package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashvale/lattice/internal/noteservice"
	"github.com/ashvale/lattice/internal/stats"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth
// group. st may be nil when the rollup history is disabled.
func NewRouter(svc *noteservice.Service, st *stats.Store, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, st)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes.
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)

	// Extraction and references.
	r.Get("/links/*", h.ExtractLinks)
	r.Get("/backlinks/*", h.Backlinks)

	// Graphs.
	r.Get("/graph", h.NoteGraph)
	r.Get("/graph/tags", h.TagGraph)

	// Integrity and rename.
	r.Get("/integrity", h.Integrity)
	r.Post("/rename", h.Rename)

	// Similarity.
	r.Get("/similarity", h.Similarity)
	r.Get("/similar/*", h.FindSimilar)
	r.Get("/clusters/*", h.Clusters)

	// Structure.
	r.Get("/outline/*", h.Outline)

	// Tasks.
	r.Get("/todos/*", h.Todos)
	r.Post("/todos", h.AddTodo)
	r.Patch("/todos", h.ToggleTodo)

	// Housekeeping and stats.
	r.Get("/attachments/unused", h.UnusedAttachments)
	r.Get("/stats", h.Stats)
	r.Get("/stats/history", h.StatsHistory)
	r.Post("/stats/rollup", h.Rollup)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
