package similar

import (
	"math"
	"testing"

	"github.com/ashvale/lattice/internal/testutil"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCompare_IdenticalDocumentScoresOne(t *testing.T) {
	_, store := testutil.TestVault(t)
	note := "---\ntitle: Alpha\nstatus: draft\n---\n#go #notes\n[[Other]]\nshared words alpha beta gamma"
	testutil.Seed(t, store, map[string]string{"d.md": note})

	s, err := Compare(store, "d.md", "d.md")
	if err != nil {
		t.Fatal(err)
	}
	if !approx(s.Content, 1) || !approx(s.Tags, 1) || !approx(s.Metadata, 1) || !approx(s.Links, 1) {
		t.Errorf("sub-scores = %+v, want all 1.0", s)
	}
	if !approx(s.Overall, 1) {
		t.Errorf("overall = %v, want 1.0", s.Overall)
	}
}

func TestCompare_Symmetric(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"a.md": "---\ntitle: One\n---\n#x #y\n[[A]]\nalpha beta",
		"b.md": "---\ntitle: Two\n---\n#y #z\n[[A]] [[B]]\nbeta gamma delta",
	})

	ab, err := Compare(store, "a.md", "b.md")
	if err != nil {
		t.Fatal(err)
	}
	ba, err := Compare(store, "b.md", "a.md")
	if err != nil {
		t.Fatal(err)
	}
	if ab != ba {
		t.Errorf("Compare not symmetric: %+v vs %+v", ab, ba)
	}
}

func TestCompare_TagOverlap(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"a.md": "#go #notes\ncompletely different words here",
		"b.md": "#notes #go\nnothing shared textually zzz",
	})

	s, err := Compare(store, "a.md", "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if !approx(s.Tags, 1) {
		t.Errorf("tags = %v, want 1.0 for identical tag sets", s.Tags)
	}
	if s.Content >= 1 {
		t.Errorf("content = %v, distinct bodies must not score 1", s.Content)
	}
}

func TestCompare_DisjointScoresZero(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"a.md": "apple orange banana",
		"b.md": "quantum entanglement theory",
	})

	s, err := Compare(store, "a.md", "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if !approx(s.Overall, 0) {
		t.Errorf("overall = %v, want 0 for fully disjoint notes", s.Overall)
	}
}

func TestFindSimilar_RankingAndThreshold(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"seed.md":  "#shared\nalpha beta gamma",
		"close.md": "#shared\nalpha beta gamma",
		"far.md":   "#shared\nwholly different tokens zzz",
		"none.md":  "unrelated material entirely",
	})

	notes, scanErrs, err := FindSimilar(store, "seed.md", 10, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(scanErrs) != 0 {
		t.Errorf("scan errors = %v", scanErrs)
	}
	if len(notes) != 2 {
		t.Fatalf("notes = %+v, want close and far", notes)
	}
	if notes[0].Path != "close.md" || notes[1].Path != "far.md" {
		t.Errorf("ranking = %v, %v", notes[0].Path, notes[1].Path)
	}
	if notes[0].Score.Overall <= notes[1].Score.Overall {
		t.Errorf("scores not descending: %v <= %v", notes[0].Score.Overall, notes[1].Score.Overall)
	}

	strict, _, err := FindSimilar(store, "seed.md", 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(strict) != 1 || strict[0].Path != "close.md" {
		t.Errorf("strict = %+v, want close only", strict)
	}
}

func TestFindSimilar_Limit(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"seed.md": "#t\nalpha beta",
		"a.md":    "#t\nalpha beta",
		"b.md":    "#t\nalpha beta",
	})

	notes, _, err := FindSimilar(store, "seed.md", 1, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Errorf("notes = %+v, want limit applied", notes)
	}
}

func TestCluster_SeedLeadsFirstGroup(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"seed.md":  "#shared\nalpha beta gamma",
		"close.md": "#shared\nalpha beta gamma",
		"none.md":  "unrelated material entirely",
	})

	groups, err := Cluster(store, "seed.md", 10, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %v", groups)
	}
	if groups[0][0] != "seed.md" {
		t.Errorf("first group = %v, seed must lead", groups[0])
	}
	if len(groups[0]) != 2 || groups[0][1] != "close.md" {
		t.Errorf("first group = %v", groups[0])
	}
}
