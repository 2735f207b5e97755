package extract

import (
	"regexp"
	"strings"

	"github.com/ashvale/lattice/internal/models"
)

var (
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	slugStripRe  = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugSpacesRe = regexp.MustCompile(`\s+`)
)

// Outline scans text for ATX headings and builds the heading tree.
// A stack keyed by heading level decides attachment: any open heading
// whose level is >= the new heading's level is popped first, then the
// new heading becomes a child of whatever remains (or a root).
func Outline(text string) []*models.OutlineNode {
	var roots []*models.OutlineNode
	var stack []*models.OutlineNode

	for i, line := range strings.Split(text, "\n") {
		m := headingRe.FindStringSubmatch(strings.TrimRight(line, " \t"))
		if m == nil {
			continue
		}
		node := &models.OutlineNode{
			Level: len(m[1]),
			Text:  strings.TrimSpace(m[2]),
			Slug:  Slugify(m[2]),
			Line:  i + 1,
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, node)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, node)
	}
	return roots
}

// Slugify derives a heading identifier: lower-case, strip everything
// outside word/space/hyphen characters, collapse whitespace runs to
// single hyphens, trim leading and trailing hyphens.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpacesRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
