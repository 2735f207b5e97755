package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashvale/lattice/internal/apperr"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/noteservice"
	"github.com/ashvale/lattice/internal/stats"
)

// defaultSimilarLimit bounds vault-wide similarity scans when the
// client does not ask for a specific number of results.
const defaultSimilarLimit = 10

// Handler holds API route handlers.
type Handler struct {
	svc   *noteservice.Service
	stats *stats.Store
}

// NewHandler creates a new Handler. The stats store may be nil when the
// rollup history is disabled.
func NewHandler(svc *noteservice.Service, st *stats.Store) *Handler {
	return &Handler{svc: svc, stats: st}
}

// notePath extracts the note path from the URL wildcard. Supports
// encoded slashes from OpenAPI clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// GetNote handles GET /notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and title are required"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Path, req.Title, req.Body)
	if err != nil {
		writeServiceError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ExtractLinks handles GET /links/*.
func (h *Handler) ExtractLinks(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ext, err := h.svc.ExtractLinks(r.Context(), path)
	if err != nil {
		writeServiceError(w, "extract links", err)
		return
	}
	writeJSON(w, http.StatusOK, ext)
}

// Backlinks handles GET /backlinks/*.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	bl, scanErrs, err := h.svc.Backlinks(r.Context(), path)
	if err != nil {
		writeServiceError(w, "backlinks", err)
		return
	}
	if bl == nil {
		bl = []models.Backlink{}
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Target: path, Backlinks: bl, Errors: scanErrs})
}

// NoteGraph handles GET /graph.
func (h *Handler) NoteGraph(w http.ResponseWriter, r *http.Request) {
	g, scanErrs, err := h.svc.NoteGraph(r.Context())
	if err != nil {
		writeServiceError(w, "note graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: g.Nodes, Edges: g.Edges, Errors: scanErrs})
}

// TagGraph handles GET /graph/tags.
func (h *Handler) TagGraph(w http.ResponseWriter, r *http.Request) {
	g, scanErrs, err := h.svc.TagGraph(r.Context())
	if err != nil {
		writeServiceError(w, "tag graph", err)
		return
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: g.Nodes, Edges: g.Edges, Errors: scanErrs})
}

// Integrity handles GET /integrity with an optional ?scope=path query.
func (h *Handler) Integrity(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	report, err := h.svc.CheckIntegrity(r.Context(), scope)
	if err != nil {
		writeServiceError(w, "integrity", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Rename handles POST /rename.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.OldPath == "" || req.NewPath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("old_path and new_path are required"))
		return
	}
	result, err := h.svc.Rename(r.Context(), req.OldPath, req.NewPath, req.DryRun)
	if err != nil {
		writeServiceError(w, "rename", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Similarity handles GET /similarity?a=path&b=path.
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	a := r.URL.Query().Get("a")
	b := r.URL.Query().Get("b")
	if a == "" || b == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'a' and 'b' are required"))
		return
	}
	result, err := h.svc.Similarity(r.Context(), a, b)
	if err != nil {
		writeServiceError(w, "similarity", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// FindSimilar handles GET /similar/* with optional limit and threshold.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	limit, threshold := scanParams(r, defaultSimilarLimit, 0.3)
	results, scanErrs, err := h.svc.FindSimilar(r.Context(), path, limit, threshold)
	if err != nil {
		writeServiceError(w, "find similar", err)
		return
	}
	if results == nil {
		results = []models.SimilarNote{}
	}
	writeJSON(w, http.StatusOK, SimilarResponse{Seed: path, Results: results, Errors: scanErrs})
}

// Clusters handles GET /clusters/* with optional limit and threshold.
func (h *Handler) Clusters(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	limit, threshold := scanParams(r, defaultSimilarLimit, 0.3)
	groups, err := h.svc.Cluster(r.Context(), path, limit, threshold)
	if err != nil {
		writeServiceError(w, "clusters", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seed": path, "groups": groups})
}

// Outline handles GET /outline/*.
func (h *Handler) Outline(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	outline, err := h.svc.Outline(r.Context(), path)
	if err != nil {
		writeServiceError(w, "outline", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "outline": outline})
}

// Todos handles GET /todos/*.
func (h *Handler) Todos(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	tasks, err := h.svc.Todos(r.Context(), path)
	if err != nil {
		writeServiceError(w, "todos", err)
		return
	}
	if tasks == nil {
		tasks = []models.TaskItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "tasks": tasks})
}

// AddTodo handles POST /todos.
func (h *Handler) AddTodo(w http.ResponseWriter, r *http.Request) {
	var req AddTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and text are required"))
		return
	}
	line, err := h.svc.AddTodo(r.Context(), req.Path, req.Text)
	if err != nil {
		writeServiceError(w, "add todo", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"path": req.Path, "line": line})
}

// ToggleTodo handles PATCH /todos.
func (h *Handler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	var req ToggleTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.Line < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("path and line are required"))
		return
	}
	if err := h.svc.ToggleTodo(r.Context(), req.Path, req.Line); err != nil {
		writeServiceError(w, "toggle todo", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnusedAttachments handles GET /attachments/unused.
func (h *Handler) UnusedAttachments(w http.ResponseWriter, r *http.Request) {
	unused, scanErrs, err := h.svc.UnusedAttachments(r.Context())
	if err != nil {
		writeServiceError(w, "unused attachments", err)
		return
	}
	if unused == nil {
		unused = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"unused": unused, "errors": scanErrs})
}

// Stats handles GET /stats: a fresh snapshot, never a stored one.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, err := stats.Collect(h.svc.Store())
	if err != nil {
		writeServiceError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Rollup handles POST /stats/rollup: snapshot plus history append.
func (h *Handler) Rollup(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusNotFound, errorBody("rollup history disabled"))
		return
	}
	snap, err := stats.Collect(h.svc.Store())
	if err != nil {
		writeServiceError(w, "rollup", err)
		return
	}
	recorded, err := h.stats.Record(snap)
	if err != nil {
		writeServiceError(w, "rollup", err)
		return
	}
	writeJSON(w, http.StatusCreated, recorded)
}

// StatsHistory handles GET /stats/history.
func (h *Handler) StatsHistory(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeJSON(w, http.StatusNotFound, errorBody("rollup history disabled"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	history, err := h.stats.History(limit)
	if err != nil {
		writeServiceError(w, "stats history", err)
		return
	}
	if history == nil {
		history = []models.StatsSnapshot{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rollups": history})
}

// scanParams reads the limit and threshold query parameters with
// fallbacks.
func scanParams(r *http.Request, defLimit int, defThreshold float64) (int, float64) {
	q := r.URL.Query()
	limit := defLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	threshold := defThreshold
	if v, err := strconv.ParseFloat(q.Get("threshold"), 64); err == nil && v >= 0 && v <= 1 {
		threshold = v
	}
	return limit, threshold
}
