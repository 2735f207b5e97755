// Package similar computes weighted composite similarity between
// documents from four independently scored signals: content-token
// overlap, tag overlap, frontmatter-field overlap, and internal-link
// target overlap. All sub-scores are symmetric set operations, so
// Compare(a, b) and Compare(b, a) agree exactly.
package similar

import (
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ashvale/lattice/internal/extract"
	"github.com/ashvale/lattice/internal/frontmatter"
	"github.com/ashvale/lattice/internal/models"
	"github.com/ashvale/lattice/internal/storage"
)

// Fixed signal weights.
const (
	weightContent  = 0.4
	weightTags     = 0.3
	weightMetadata = 0.2
	weightLinks    = 0.1
)

// scanConcurrency bounds parallel reads during vault-wide scans. Each
// per-document read/compare step is independent and side-effect-free.
const scanConcurrency = 8

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// features holds the extracted signals of one document.
type features struct {
	tokens map[string]struct{}
	tags   map[string]struct{}
	links  map[string]struct{}
	fields map[string]any
}

// featuresOf extracts the four similarity signals from raw content.
func featuresOf(data []byte) features {
	text := string(data)
	f := features{
		tokens: make(map[string]struct{}),
		tags:   toSet(extract.TagNames(text)),
		links:  toSet(extract.InternalTargets(text)),
		fields: frontmatter.Parse(data).Fields,
	}
	// Content tokens: lower-cased words longer than two characters,
	// taken from the full text including the frontmatter block.
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if utf8.RuneCountInString(w) > 2 {
			f.tokens[w] = struct{}{}
		}
	}
	return f
}

// Compare reads both documents and scores them. Read errors surface
// directly to the caller.
func Compare(store storage.Provider, pathA, pathB string) (models.SimilarityResult, error) {
	dataA, err := store.Read(pathA)
	if err != nil {
		return models.SimilarityResult{}, err
	}
	dataB, err := store.Read(pathB)
	if err != nil {
		return models.SimilarityResult{}, err
	}
	return score(featuresOf(dataA), featuresOf(dataB)), nil
}

// score combines the four sub-scores into the weighted overall score.
// Everything is rounded to two decimals for reporting.
func score(a, b features) models.SimilarityResult {
	content := jaccard(a.tokens, b.tokens)
	tags := jaccard(a.tags, b.tags)
	metadata := metadataScore(a.fields, b.fields)
	links := jaccard(a.links, b.links)

	overall := weightContent*content + weightTags*tags +
		weightMetadata*metadata + weightLinks*links

	return models.SimilarityResult{
		Content:  round2(content),
		Tags:     round2(tags),
		Metadata: round2(metadata),
		Links:    round2(links),
		Overall:  round2(overall),
	}
}

// metadataScore averages the Jaccard index over field names with the
// fraction of common fields holding exactly equal values. Documents
// with no fields on either side score zero.
func metadataScore(a, b map[string]any) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	aKeys := make(map[string]struct{}, len(a))
	for k := range a {
		aKeys[k] = struct{}{}
	}
	bKeys := make(map[string]struct{}, len(b))
	for k := range b {
		bKeys[k] = struct{}{}
	}
	nameScore := jaccard(aKeys, bKeys)

	common, equal := 0, 0
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			continue
		}
		common++
		if reflect.DeepEqual(av, bv) {
			equal++
		}
	}
	valueScore := 0.0
	if common > 0 {
		valueScore = float64(equal) / float64(common)
	}
	return (nameScore + valueScore) / 2
}

// jaccard is |intersection| / |union|, zero when the union is empty.
func jaccard(a, b map[string]struct{}) float64 {
	union := len(a)
	inter := 0
	for k := range b {
		if _, ok := a[k]; ok {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// FindSimilar scans the whole vault and returns up to limit documents
// whose overall similarity to seed is at least threshold, best first.
// Per-document failures are collected, not fatal.
func FindSimilar(store storage.Provider, seed string, limit int, threshold float64) ([]models.SimilarNote, []models.ScanError, error) {
	seedData, err := store.Read(seed)
	if err != nil {
		return nil, nil, err
	}
	seedFeat := featuresOf(seedData)

	paths, err := store.List()
	if err != nil {
		return nil, nil, err
	}

	// Indexed result slots keep ranking deterministic regardless of
	// goroutine completion order.
	scores := make([]*models.SimilarNote, len(paths))
	scanErrs := make([]*models.ScanError, len(paths))

	var g errgroup.Group
	g.SetLimit(scanConcurrency)
	for i, p := range paths {
		if p == seed {
			continue
		}
		g.Go(func() error {
			data, err := store.Read(p)
			if err != nil {
				scanErrs[i] = &models.ScanError{Path: p, Err: err.Error()}
				return nil
			}
			s := score(seedFeat, featuresOf(data))
			if s.Overall >= threshold {
				scores[i] = &models.SimilarNote{Path: p, Score: s}
			}
			return nil
		})
	}
	_ = g.Wait()

	var out []models.SimilarNote
	var errs []models.ScanError
	for i := range paths {
		if scores[i] != nil {
			out = append(out, *scores[i])
		}
		if scanErrs[i] != nil {
			errs = append(errs, *scanErrs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.Overall != out[j].Score.Overall {
			return out[i].Score.Overall > out[j].Score.Overall
		}
		return out[i].Path < out[j].Path
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, errs, nil
}

// Cluster groups the top-limit similar documents of seed greedily: the
// best not-yet-grouped candidate starts a group and every remaining
// candidate whose similarity to that group center meets the threshold
// joins it. The seed itself leads the first group.
func Cluster(store storage.Provider, seed string, limit int, threshold float64) ([][]string, error) {
	ranked, _, err := FindSimilar(store, seed, limit, threshold)
	if err != nil {
		return nil, err
	}

	remaining := make([]string, 0, len(ranked)+1)
	remaining = append(remaining, seed)
	for _, r := range ranked {
		remaining = append(remaining, r.Path)
	}

	var groups [][]string
	for len(remaining) > 0 {
		center := remaining[0]
		group := []string{center}
		var rest []string
		for _, candidate := range remaining[1:] {
			s, err := Compare(store, center, candidate)
			if err != nil {
				rest = append(rest, candidate)
				continue
			}
			if s.Overall >= threshold {
				group = append(group, candidate)
			} else {
				rest = append(rest, candidate)
			}
		}
		groups = append(groups, group)
		remaining = rest
	}
	return groups, nil
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
