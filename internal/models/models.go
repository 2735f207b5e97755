// Package models defines the domain types for Lattice.
package models

import "time"

// Link kinds.
const (
	LinkInternal = "internal"
	LinkExternal = "external"
	LinkEmbed    = "embed"
)

// LinkRecord is one link occurrence anchored to a source line.
// For external links Target is a URL and Alias is the link text.
// Line is 1-based and only meaningful for the extraction call that
// produced it.
type LinkRecord struct {
	Target  string `json:"target"`
	Alias   string `json:"alias,omitempty"`
	Line    int    `json:"line"`
	Context string `json:"context"`
	Kind    string `json:"kind"`
}

// TagRecord is one #tag occurrence anchored to a source line.
type TagRecord struct {
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// Extraction is the full structured output of scanning one document.
type Extraction struct {
	Internal []LinkRecord `json:"internal"`
	External []LinkRecord `json:"external"`
	Embeds   []LinkRecord `json:"embeds"`
	Tags     []TagRecord  `json:"tags"`
}

// GraphNode is a node in the note or tag graph.
// For note graphs ID is the filename stem; for tag graphs ID is the
// tag name and Count holds the vault-wide occurrence count.
type GraphNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Path  string `json:"path,omitempty"`
	Count int    `json:"count,omitempty"`
}

// Edge kinds.
const (
	EdgeLink        = "link"
	EdgeTagRelation = "tag-relation"
)

// GraphEdge is a directed (note graph) or unordered (tag graph) edge.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// Graph bundles nodes and edges.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Backlink is one inbound reference to a document.
type Backlink struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// BrokenLink is an internal link whose target document does not exist.
type BrokenLink struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Line    int    `json:"line"`
	Context string `json:"context"`
}

// IntegrityReport is the result of an integrity check.
type IntegrityReport struct {
	BrokenLinks   []BrokenLink `json:"broken_links"`
	OrphanedFiles []string     `json:"orphaned_files"`
	FilesChecked  int          `json:"files_checked"`
	LinksChecked  int          `json:"links_checked"`
	Errors        []ScanError  `json:"errors,omitempty"`
}

// RenameResult reports the outcome of a rename/move operation.
type RenameResult struct {
	Success       bool        `json:"success"`
	OldPath       string      `json:"old_path"`
	NewPath       string      `json:"new_path"`
	FilesToUpdate []string    `json:"files_to_update"`
	Errors        []ScanError `json:"errors,omitempty"`
	DryRun        bool        `json:"dry_run"`
}

// SimilarityResult holds the four sub-scores and the weighted overall
// score, all in [0,1] and rounded to two decimals.
type SimilarityResult struct {
	Content  float64 `json:"content"`
	Tags     float64 `json:"tags"`
	Metadata float64 `json:"metadata"`
	Links    float64 `json:"links"`
	Overall  float64 `json:"overall"`
}

// SimilarNote is one ranked hit from a vault-wide similarity scan.
type SimilarNote struct {
	Path  string           `json:"path"`
	Score SimilarityResult `json:"score"`
}

// OutlineNode is one heading in a document outline tree.
type OutlineNode struct {
	Level    int            `json:"level"`
	Text     string         `json:"text"`
	Slug     string         `json:"slug"`
	Line     int            `json:"line"`
	Children []*OutlineNode `json:"children,omitempty"`
}

// TaskItem is one checkbox task with its surrounding context lines.
type TaskItem struct {
	Text    string   `json:"text"`
	Done    bool     `json:"done"`
	Line    int      `json:"line"`
	Context []string `json:"context"`
}

// ScanError records a per-file failure during a multi-file scan.
// Batch operations collect these instead of aborting.
type ScanError struct {
	Path string `json:"path"`
	Err  string `json:"error"`
}

// StatsSnapshot is one rollup of vault-wide metrics, derived fresh from
// file contents at collection time.
type StatsSnapshot struct {
	ID           int64     `json:"id,omitempty"`
	Notes        int       `json:"notes"`
	Links        int       `json:"links"`
	Tags         int       `json:"tags"`
	BrokenLinks  int       `json:"broken_links"`
	Orphans      int       `json:"orphans"`
	TasksDone    int       `json:"tasks_done"`
	TasksPending int       `json:"tasks_pending"`
	CollectedAt  time.Time `json:"collected_at"`
}
