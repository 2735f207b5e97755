package api

import "github.com/ashvale/lattice/internal/models"

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path  string `json:"path"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// RenameRequest is the request body for a rename/move operation.
type RenameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
	DryRun  bool   `json:"dry_run"`
}

// AddTodoRequest is the request body for appending a task to a note.
type AddTodoRequest struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// ToggleTodoRequest is the request body for flipping a task checkbox.
type ToggleTodoRequest struct {
	Path string `json:"path"`
	Line int    `json:"line"`
}

// GraphResponse wraps a graph plus any per-file scan errors.
type GraphResponse struct {
	Nodes  []models.GraphNode `json:"nodes"`
	Edges  []models.GraphEdge `json:"edges"`
	Errors []models.ScanError `json:"errors,omitempty"`
}

// BacklinksResponse wraps the backlinks of one note.
type BacklinksResponse struct {
	Target    string             `json:"target"`
	Backlinks []models.Backlink  `json:"backlinks"`
	Errors    []models.ScanError `json:"errors,omitempty"`
}

// SimilarResponse wraps a ranked similarity scan.
type SimilarResponse struct {
	Seed    string               `json:"seed"`
	Results []models.SimilarNote `json:"results"`
	Errors  []models.ScanError   `json:"errors,omitempty"`
}
