// Package extract scans note text line by line and produces structured
// records for internal links, external links, embeds, and tags. Every
// record carries a 1-based line number and the trimmed source line as
// context. Parsing is permissive: anything not matching a pattern is
// inert text, and extraction itself never fails on malformed markup.
package extract

import (
	"regexp"
	"strings"

	"github.com/ashvale/lattice/internal/models"
)

var (
	// wikilinkRe matches [[target]] and [[target|alias]]; the optional
	// leading ! distinguishes embeds from plain internal links.
	wikilinkRe = regexp.MustCompile(`(!?)\[\[([^\[\]]+)\]\]`)
	// externalRe matches [text](url) where url carries a scheme.
	externalRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	// tagRe matches # followed by word-class characters: letters in any
	// script, digits, underscore, hyphen. Occurrences inside URLs or
	// wikilink targets are not excluded; see the integrity notes in
	// DESIGN.md before changing this.
	tagRe = regexp.MustCompile(`#([\p{L}\p{N}_-]+)`)
)

// Extract scans text and returns all link and tag records. The four
// categories are extracted independently per line, so a single line may
// contribute to several of them.
func Extract(text string) models.Extraction {
	var out models.Extraction
	for i, line := range strings.Split(text, "\n") {
		lineNum := i + 1
		context := strings.TrimSpace(line)

		for _, m := range wikilinkRe.FindAllStringSubmatch(line, -1) {
			target, alias := splitAlias(m[2])
			if target == "" {
				continue
			}
			rec := models.LinkRecord{
				Target:  target,
				Alias:   alias,
				Line:    lineNum,
				Context: context,
			}
			if m[1] == "!" {
				rec.Kind = models.LinkEmbed
				out.Embeds = append(out.Embeds, rec)
			} else {
				rec.Kind = models.LinkInternal
				out.Internal = append(out.Internal, rec)
			}
		}

		for _, m := range externalRe.FindAllStringSubmatch(line, -1) {
			out.External = append(out.External, models.LinkRecord{
				Target:  m[2],
				Alias:   m[1],
				Line:    lineNum,
				Context: context,
				Kind:    models.LinkExternal,
			})
		}

		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			out.Tags = append(out.Tags, models.TagRecord{
				Name:    m[1],
				Line:    lineNum,
				Context: context,
			})
		}
	}
	return out
}

// splitAlias separates a wikilink inner text into target and alias.
func splitAlias(inner string) (target, alias string) {
	if i := strings.Index(inner, "|"); i >= 0 {
		return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:])
	}
	return strings.TrimSpace(inner), ""
}

// InternalTargets returns the distinct internal-link targets of text,
// alias suffixes stripped, in first-seen order.
func InternalTargets(text string) []string {
	ext := Extract(text)
	seen := make(map[string]struct{}, len(ext.Internal))
	var out []string
	for _, rec := range ext.Internal {
		if _, ok := seen[rec.Target]; ok {
			continue
		}
		seen[rec.Target] = struct{}{}
		out = append(out, rec.Target)
	}
	return out
}

// TagNames returns the distinct tag names of text in first-seen order.
func TagNames(text string) []string {
	ext := Extract(text)
	seen := make(map[string]struct{}, len(ext.Tags))
	var out []string
	for _, rec := range ext.Tags {
		if _, ok := seen[rec.Name]; ok {
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec.Name)
	}
	return out
}
