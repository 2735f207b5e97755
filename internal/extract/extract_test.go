package extract

import (
	"testing"
)

func TestExtract_InternalAndAlias(t *testing.T) {
	ext := Extract("See [[Note A]] and [[Note B|the other one]].")
	if len(ext.Internal) != 2 {
		t.Fatalf("internal = %d, want 2", len(ext.Internal))
	}
	if ext.Internal[0].Target != "Note A" || ext.Internal[0].Alias != "" {
		t.Errorf("first = %+v", ext.Internal[0])
	}
	if ext.Internal[1].Target != "Note B" || ext.Internal[1].Alias != "the other one" {
		t.Errorf("second = %+v", ext.Internal[1])
	}
}

func TestExtract_EmbedNeverInInternal(t *testing.T) {
	ext := Extract("plain [[a]] embed ![[b]] aliased embed ![[c|pic]]")
	if len(ext.Embeds) != 2 {
		t.Fatalf("embeds = %d, want 2", len(ext.Embeds))
	}
	if len(ext.Internal) != 1 || ext.Internal[0].Target != "a" {
		t.Fatalf("internal = %+v, want only [[a]]", ext.Internal)
	}
	for _, e := range ext.Embeds {
		for _, l := range ext.Internal {
			if e.Target == l.Target && e.Line == l.Line {
				t.Errorf("embed %q also present in internal list", e.Target)
			}
		}
	}
}

func TestExtract_External(t *testing.T) {
	ext := Extract("read [the docs](https://example.com/docs) and [wiki](http://wiki.dev)")
	if len(ext.External) != 2 {
		t.Fatalf("external = %d, want 2", len(ext.External))
	}
	if ext.External[0].Target != "https://example.com/docs" || ext.External[0].Alias != "the docs" {
		t.Errorf("external[0] = %+v", ext.External[0])
	}
}

func TestExtract_Tags(t *testing.T) {
	ext := Extract("#project and #встреча-2024 plus #under_score")
	if len(ext.Tags) != 3 {
		t.Fatalf("tags = %d, want 3: %+v", len(ext.Tags), ext.Tags)
	}
	want := []string{"project", "встреча-2024", "under_score"}
	for i, w := range want {
		if ext.Tags[i].Name != w {
			t.Errorf("tags[%d] = %q, want %q", i, ext.Tags[i].Name, w)
		}
	}
}

func TestExtract_TagInsideURLNotExcluded(t *testing.T) {
	// Permissive by design: # occurrences inside URLs or wikilink
	// targets still count as tags.
	ext := Extract("[anchor](https://example.com/page#section)")
	if len(ext.Tags) != 1 || ext.Tags[0].Name != "section" {
		t.Fatalf("tags = %+v, want the permissive #section match", ext.Tags)
	}
}

func TestExtract_LineNumbersAndContext(t *testing.T) {
	ext := Extract("first line\n  see [[target]] here  \nthird #tag")
	if len(ext.Internal) != 1 {
		t.Fatalf("internal = %d, want 1", len(ext.Internal))
	}
	if ext.Internal[0].Line != 2 {
		t.Errorf("line = %d, want 2", ext.Internal[0].Line)
	}
	if ext.Internal[0].Context != "see [[target]] here" {
		t.Errorf("context = %q", ext.Internal[0].Context)
	}
	if len(ext.Tags) != 1 || ext.Tags[0].Line != 3 {
		t.Errorf("tags = %+v, want one on line 3", ext.Tags)
	}
}

func TestExtract_LineContributesToMultipleCategories(t *testing.T) {
	ext := Extract("[[note]] ![[img.png]] [site](https://x.dev) #tag")
	if len(ext.Internal) != 1 || len(ext.Embeds) != 1 || len(ext.External) != 1 || len(ext.Tags) != 1 {
		t.Errorf("extraction = %+v", ext)
	}
}

func TestExtract_EmptyTargetIgnored(t *testing.T) {
	ext := Extract("broken [[ ]] and [[|alias only]]")
	if len(ext.Internal) != 0 {
		t.Errorf("internal = %+v, want none", ext.Internal)
	}
}

func TestExtract_MalformedMarkupIsInert(t *testing.T) {
	ext := Extract("[[unclosed and ]stray] (paren) #")
	if len(ext.Internal)+len(ext.External)+len(ext.Embeds)+len(ext.Tags) != 0 {
		t.Errorf("expected nothing extracted, got %+v", ext)
	}
}

func TestInternalTargets_DedupedAliasStripped(t *testing.T) {
	targets := InternalTargets("[[A]] then [[B|b]] then [[A|again]]")
	if len(targets) != 2 || targets[0] != "A" || targets[1] != "B" {
		t.Errorf("targets = %v, want [A B]", targets)
	}
}

func TestTagNames_Deduped(t *testing.T) {
	tags := TagNames("#x #y\n#x again")
	if len(tags) != 2 || tags[0] != "x" || tags[1] != "y" {
		t.Errorf("tags = %v, want [x y]", tags)
	}
}

func TestExtract_SpecimenNote(t *testing.T) {
	ext := Extract("# Title\n[[B]]\n#tag1\n- [ ] task1")
	if len(ext.Internal) != 1 || ext.Internal[0].Target != "B" || ext.Internal[0].Line != 2 {
		t.Errorf("internal = %+v", ext.Internal)
	}
	// "# Title" is a heading, not a tag line, but the permissive tag
	// pattern only matches word characters after #, and "# Title" has a
	// space, so only tag1 matches.
	if len(ext.Tags) != 1 || ext.Tags[0].Name != "tag1" || ext.Tags[0].Line != 3 {
		t.Errorf("tags = %+v", ext.Tags)
	}
}
