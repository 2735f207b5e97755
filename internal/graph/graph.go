// Package graph derives the note link graph and the tag co-occurrence
// graph from current vault contents. Nothing is cached: every build
// re-reads the enumerated documents.
package graph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashvale/lattice/internal/extract"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

// Stem returns the document identity used as a graph node id: the base
// file name with its extension stripped, case preserved.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// BuildNoteGraph builds one node per document (id = filename stem) and
// one edge per distinct internal-link target that resolves to an
// existing node. Dangling links never become edges; they are integrity
// findings instead. Node order follows enumeration order, edge order is
// first-discovered. Unreadable documents are reported, not fatal.
func BuildNoteGraph(store storage.Provider) (models.Graph, []models.ScanError, error) {
	paths, err := store.List()
	if err != nil {
		return models.Graph{}, nil, err
	}

	g := models.Graph{Nodes: make([]models.GraphNode, 0, len(paths))}
	ids := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		id := Stem(p)
		g.Nodes = append(g.Nodes, models.GraphNode{ID: id, Label: id, Path: p})
		ids[id] = struct{}{}
	}

	var scanErrs []models.ScanError
	for _, p := range paths {
		data, err := store.Read(p)
		if err != nil {
			scanErrs = append(scanErrs, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		source := Stem(p)
		for _, target := range extract.InternalTargets(string(data)) {
			if _, ok := ids[target]; !ok {
				continue
			}
			g.Edges = append(g.Edges, models.GraphEdge{
				Source: source,
				Target: target,
				Kind:   models.EdgeLink,
			})
		}
	}
	return g, scanErrs, nil
}

// BuildTagGraph builds one node per distinct tag, counting every
// occurrence, and one unordered edge per pair of tags that co-occur in
// at least one document. Repeated co-occurrence across documents still
// yields exactly one edge; self-pairs are never generated.
func BuildTagGraph(store storage.Provider) (models.Graph, []models.ScanError, error) {
	paths, err := store.List()
	if err != nil {
		return models.Graph{}, nil, err
	}

	var g models.Graph
	counts := make(map[string]int)
	nodeIdx := make(map[string]int)
	edgeSeen := make(map[string]struct{})
	var scanErrs []models.ScanError

	for _, p := range paths {
		data, err := store.Read(p)
		if err != nil {
			scanErrs = append(scanErrs, models.ScanError{Path: p, Err: err.Error()})
			continue
		}
		ext := extract.Extract(string(data))

		// Count every occurrence; collect the document's distinct tags
		// in first-seen order for pair generation.
		var distinct []string
		seen := make(map[string]struct{})
		for _, tag := range ext.Tags {
			counts[tag.Name]++
			if _, ok := nodeIdx[tag.Name]; !ok {
				nodeIdx[tag.Name] = len(g.Nodes)
				g.Nodes = append(g.Nodes, models.GraphNode{ID: tag.Name, Label: tag.Name})
			}
			if _, ok := seen[tag.Name]; !ok {
				seen[tag.Name] = struct{}{}
				distinct = append(distinct, tag.Name)
			}
		}

		for i := 0; i < len(distinct); i++ {
			for j := i + 1; j < len(distinct); j++ {
				key := edgeKey(distinct[i], distinct[j])
				if _, ok := edgeSeen[key]; ok {
					continue
				}
				edgeSeen[key] = struct{}{}
				g.Edges = append(g.Edges, models.GraphEdge{
					Source: distinct[i],
					Target: distinct[j],
					Kind:   models.EdgeTagRelation,
				})
			}
		}
	}

	for i := range g.Nodes {
		g.Nodes[i].Count = counts[g.Nodes[i].ID]
	}
	return g, scanErrs, nil
}

// edgeKey is the lexicographically sorted tag pair, so the same pair
// discovered in either order maps to one edge.
func edgeKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return pair[0] + "::" + pair[1]
}
