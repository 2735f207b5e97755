// Package integrity cross-references extracted internal links against
// the enumerated document set. Both passes are pure functions of
// current file contents; nothing is mutated.
package integrity

import (
	"path/filepath"

	"github.com/ashvale/lattice/internal/extract"
	"github.com/ashvale/lattice/internal/graph"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

// noteExt is the document file extension appended to link targets when
// resolving them to candidate files.
const noteExt = ".md"

// Check classifies links and documents for the given scope. scope is a
// single vault-relative document path, or empty for the whole vault.
//
// A link is broken when its target identity plus the document extension
// names no enumerated file (matched against both the vault-relative
// path and the bare file name). A document is orphaned when its stem
// never appears as another document's internal-link target; self-links
// do not count, and the orphan pass is always vault-wide, whatever the
// scope. Unreadable
// documents are recorded per file and do not abort the check.
func Check(store storage.Provider, scope string) (models.IntegrityReport, error) {
	paths, err := store.List()
	if err != nil {
		return models.IntegrityReport{}, err
	}

	present := make(map[string]struct{}, len(paths)*2)
	for _, p := range paths {
		present[p] = struct{}{}
		present[filepath.Base(p)] = struct{}{}
	}

	var report models.IntegrityReport
	referenced := make(map[string]struct{})

	for _, p := range paths {
		data, err := store.Read(p)
		if err != nil {
			report.Errors = append(report.Errors, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		ext := extract.Extract(string(data))

		// Only references from other documents keep a note off the
		// orphan list; a note linking to itself does not count.
		selfStem := graph.Stem(p)
		for _, link := range ext.Internal {
			if graph.Stem(link.Target) == selfStem {
				continue
			}
			referenced[graph.Stem(link.Target)] = struct{}{}
		}

		inScope := scope == "" || p == scope
		if !inScope {
			continue
		}
		report.FilesChecked++
		for _, link := range ext.Internal {
			report.LinksChecked++
			if _, ok := present[link.Target+noteExt]; ok {
				continue
			}
			report.BrokenLinks = append(report.BrokenLinks, models.BrokenLink{
				Source:  p,
				Target:  link.Target,
				Line:    link.Line,
				Context: link.Context,
			})
		}
	}

	for _, p := range paths {
		if _, ok := referenced[graph.Stem(p)]; !ok {
			report.OrphanedFiles = append(report.OrphanedFiles, p)
		}
	}
	return report, nil
}
