package refs

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ashvale/lattice/internal/apperr"
	"github.com/ashvale/lattice/internal/graph"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

// Rename moves a document from oldPath to newPath and rewrites every
// referencing document's link markup to the new stem, alias and embed
// prefix preserved. Preconditions are checked before any mutation: the
// old path must exist and the new path must not. The move completes
// first; referencing-file rewrites follow and are best-effort — a
// failure on one file is recorded and does not roll back the move or
// other rewrites. With dryRun set, the same files-to-update list is
// reported without mutating anything.
func Rename(store storage.Provider, oldPath, newPath string, dryRun bool) (models.RenameResult, error) {
	result := models.RenameResult{
		OldPath: oldPath,
		NewPath: newPath,
		DryRun:  dryRun,
	}

	if !store.Exists(oldPath) {
		return result, fmt.Errorf("refs: rename %s: %w", oldPath, apperr.ErrNotFound)
	}
	if store.Exists(newPath) {
		return result, fmt.Errorf("refs: rename to %s: %w", newPath, apperr.ErrAlreadyExists)
	}

	oldStem := graph.Stem(oldPath)
	newStem := graph.Stem(newPath)
	re := referencePattern(oldStem)

	paths, err := store.List()
	if err != nil {
		return result, err
	}

	contents := make(map[string]string)
	for _, p := range paths {
		if p == oldPath {
			continue
		}
		data, err := store.Read(p)
		if err != nil {
			result.Errors = append(result.Errors, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		text := string(data)
		if !re.MatchString(text) {
			continue
		}
		result.FilesToUpdate = append(result.FilesToUpdate, p)
		contents[p] = text
	}

	if dryRun {
		result.Success = true
		return result, nil
	}

	// Move first; rewrites begin only after the move has completed.
	if err := store.Move(oldPath, newPath); err != nil {
		return result, err
	}
	result.Success = true

	for _, p := range result.FilesToUpdate {
		updated := rewriteReferences(re, contents[p], newStem)
		if err := store.Write(p, []byte(updated)); err != nil {
			result.Errors = append(result.Errors, models.ScanError{Path: p, Err: err.Error()})
		}
	}
	return result, nil
}

// rewriteReferences replaces every matched reference with a link to the
// new stem: [[old]] → [[new]], [[old|alias]] → [[new|alias]],
// ![[old]] → ![[new]].
func rewriteReferences(re *regexp.Regexp, text, newStem string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		prefix := ""
		if strings.HasPrefix(match, "!") {
			prefix = "!"
		}
		inner := strings.TrimSuffix(strings.TrimPrefix(match, prefix+"[["), "]]")
		alias := ""
		if i := strings.Index(inner, "|"); i >= 0 {
			alias = inner[i:]
		}
		return prefix + "[[" + newStem + alias + "]]"
	})
}
