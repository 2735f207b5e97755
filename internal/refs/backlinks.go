// Package refs answers inbound-reference queries and propagates
// renames through referencing documents. Both operations match the
// literal bracketed pattern for a document's stem, case-insensitively,
// with special characters escaped before embedding in the pattern.
package refs

import (
	"regexp"
	"strings"

	"github.com/ashvale/lattice/internal/graph"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

// referencePattern compiles the escaped wikilink pattern for a stem:
// an optional embed prefix, [[stem]] or [[stem|alias]], matched
// case-insensitively.
func referencePattern(stem string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(!?)\[\[` + regexp.QuoteMeta(stem) + `(\|[^\]]*)?\]\]`)
}

// Backlinks scans every other document for references to target and
// returns one entry per referencing line. target is a vault-relative
// path; matching is by stem, so [[note]] in any document counts as a
// backlink of folder/note.md. Unreadable documents are recorded, not
// fatal.
func Backlinks(store storage.Provider, target string) ([]models.Backlink, []models.ScanError, error) {
	paths, err := store.List()
	if err != nil {
		return nil, nil, err
	}
	re := referencePattern(graph.Stem(target))

	var out []models.Backlink
	var scanErrs []models.ScanError
	for _, p := range paths {
		if p == target {
			continue
		}
		data, err := store.Read(p)
		if err != nil {
			scanErrs = append(scanErrs, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		for i, line := range strings.Split(string(data), "\n") {
			if !re.MatchString(line) {
				continue
			}
			out = append(out, models.Backlink{
				File:    p,
				Line:    i + 1,
				Context: strings.TrimSpace(line),
			})
		}
	}
	return out, scanErrs, nil
}
