// Package noteservice is the consumer-facing facade over the core
// extraction and query packages. It holds no state between calls:
// every answer is derived from current file contents.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ashvale/lattice/internal/apperr"
	"github.com/ashvale/lattice/internal/checksum"
	"github.com/ashvale/lattice/internal/extract"
	"github.com/ashvale/lattice/internal/frontmatter"
	"github.com/ashvale/lattice/internal/graph"
	"github.com/ashvale/lattice/internal/integrity"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/refs"
	"github.com/ashvale/lattice/internal/similar"
	"github.com/ashvale/lattice/internal/storage"
)

// attachDir is the shared attachments directory under the vault root.
const attachDir = "attachments"

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string            `json:"path"`
	Title       string            `json:"title"`
	Content     string            `json:"content"`
	Checksum    string            `json:"checksum"`
	Tags        []string          `json:"tags"`
	Frontmatter map[string]any    `json:"frontmatter,omitempty"`
	Backlinks   []models.Backlink `json:"backlinks"`
}

// Service coordinates vault operations for the API, MCP, and CLI layers.
type Service struct {
	store storage.Provider
}

// NewService creates a new note service.
func NewService(store storage.Provider) *Service {
	return &Service{store: store}
}

// Store exposes the underlying vault provider.
func (s *Service) Store() storage.Provider {
	return s.store
}

// GetNote reads a note, parses it, and enriches it with backlinks.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	doc := frontmatter.Parse(data)
	bl, _, err := refs.Backlinks(s.store, path)
	if err != nil {
		return nil, err
	}
	if bl == nil {
		bl = []models.Backlink{}
	}
	tags := extract.TagNames(string(data))
	if tags == nil {
		tags = []string{}
	}
	return &NoteDetail{
		Path:        path,
		Title:       deriveTitle(doc),
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        tags,
		Frontmatter: doc.Fields,
		Backlinks:   bl,
	}, nil
}

// CreateNote writes a new note with a frontmatter header carrying the
// title, a sortable zettelkasten identifier, and the creation date.
func (s *Service) CreateNote(_ context.Context, path, title, body string) (*NoteDetail, error) {
	if s.store.Exists(path) {
		return nil, apperr.ErrAlreadyExists
	}
	now := time.Now()
	fields := map[string]any{
		"title":   title,
		"id":      ZettelID(now),
		"created": now.Format("2006-01-02"),
	}
	content, err := frontmatter.Serialize(fields, body)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(path, []byte(content)); err != nil {
		return nil, err
	}
	return s.GetNote(context.Background(), path)
}

// ZettelID derives a sortable, time-based identifier token.
func ZettelID(t time.Time) string {
	return t.Format("20060102150405")
}

// ExtractLinks returns the structured link and tag records of one note.
func (s *Service) ExtractLinks(_ context.Context, path string) (models.Extraction, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Extraction{}, apperr.ErrNotFound
		}
		return models.Extraction{}, err
	}
	return extract.Extract(string(data)), nil
}

// Backlinks returns every inbound reference to the given note.
func (s *Service) Backlinks(_ context.Context, path string) ([]models.Backlink, []models.ScanError, error) {
	return refs.Backlinks(s.store, path)
}

// NoteGraph builds the note link graph.
func (s *Service) NoteGraph(_ context.Context) (models.Graph, []models.ScanError, error) {
	return graph.BuildNoteGraph(s.store)
}

// TagGraph builds the tag co-occurrence graph.
func (s *Service) TagGraph(_ context.Context) (models.Graph, []models.ScanError, error) {
	return graph.BuildTagGraph(s.store)
}

// CheckIntegrity classifies broken links and orphaned documents.
// scope is a single note path or empty for the whole vault.
func (s *Service) CheckIntegrity(_ context.Context, scope string) (models.IntegrityReport, error) {
	return integrity.Check(s.store, scope)
}

// Rename moves a note and propagates the rename through referencing
// documents.
func (s *Service) Rename(_ context.Context, oldPath, newPath string, dryRun bool) (models.RenameResult, error) {
	return refs.Rename(s.store, oldPath, newPath, dryRun)
}

// Similarity scores two notes against each other.
func (s *Service) Similarity(_ context.Context, pathA, pathB string) (models.SimilarityResult, error) {
	res, err := similar.Compare(s.store, pathA, pathB)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return res, apperr.ErrNotFound
	}
	return res, err
}

// FindSimilar ranks the vault against a seed note.
func (s *Service) FindSimilar(_ context.Context, seed string, limit int, threshold float64) ([]models.SimilarNote, []models.ScanError, error) {
	notes, errs, err := similar.FindSimilar(s.store, seed, limit, threshold)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return notes, errs, apperr.ErrNotFound
	}
	return notes, errs, err
}

// Cluster groups the top similar notes of a seed note.
func (s *Service) Cluster(_ context.Context, seed string, limit int, threshold float64) ([][]string, error) {
	return similar.Cluster(s.store, seed, limit, threshold)
}

// Outline returns the heading tree of a note.
func (s *Service) Outline(_ context.Context, path string) ([]*models.OutlineNode, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return extract.Outline(string(data)), nil
}

// Todos returns the checkbox tasks of a note.
func (s *Service) Todos(_ context.Context, path string) ([]models.TaskItem, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return extract.Todos(string(data)), nil
}

// AddTodo appends a pending task to a note and returns its line number.
func (s *Service) AddTodo(_ context.Context, path, text string) (int, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, apperr.ErrNotFound
		}
		return 0, err
	}
	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += "- [ ] " + strings.TrimSpace(text) + "\n"
	if err := s.store.Write(path, []byte(content)); err != nil {
		return 0, err
	}
	return strings.Count(content, "\n"), nil
}

// ToggleTodo flips the checkbox on the given 1-based line of a note.
func (s *Service) ToggleTodo(_ context.Context, path string, line int) error {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	updated, ok := extract.ToggleTask(string(data), line)
	if !ok {
		return fmt.Errorf("noteservice: no task on line %d of %s", line, path)
	}
	return s.store.Write(path, []byte(updated))
}

// UnusedAttachments lists files in the attachments directory that no
// note references via an embed, an external link, or a literal
// /attachments/ path.
func (s *Service) UnusedAttachments(_ context.Context) ([]string, []models.ScanError, error) {
	entries, err := os.ReadDir(filepath.Join(s.store.Root(), attachDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("noteservice: read attachments dir: %w", err)
	}

	paths, err := s.store.List()
	if err != nil {
		return nil, nil, err
	}

	referenced := make(map[string]struct{})
	var scanErrs []models.ScanError
	for _, p := range paths {
		data, err := s.store.Read(p)
		if err != nil {
			scanErrs = append(scanErrs, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		text := string(data)
		ext := extract.Extract(text)
		for _, e := range ext.Embeds {
			referenced[filepath.Base(e.Target)] = struct{}{}
		}
		for _, e := range ext.External {
			referenced[filepath.Base(e.Target)] = struct{}{}
		}
		for _, line := range strings.Split(text, "\n") {
			if i := strings.Index(line, "/"+attachDir+"/"); i >= 0 {
				rest := line[i+len(attachDir)+2:]
				name := rest
				if j := strings.IndexAny(rest, ") ]"); j >= 0 {
					name = rest[:j]
				}
				referenced[name] = struct{}{}
			}
		}
	}

	var unused []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := referenced[e.Name()]; !ok {
			unused = append(unused, e.Name())
		}
	}
	return unused, scanErrs, nil
}

// deriveTitle returns the frontmatter title if present, otherwise the
// first H1 heading, otherwise empty string.
func deriveTitle(doc frontmatter.Document) string {
	if t, ok := doc.Fields["title"]; ok {
		if s, ok := t.(string); ok && s != "" {
			return s
		}
	}
	for _, line := range strings.Split(doc.Body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
