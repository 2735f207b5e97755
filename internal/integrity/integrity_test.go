package integrity

import (
	"testing"

	"github.com/ashvale/lattice/internal/testutil"
)

func TestCheck_BrokenLink(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"A.md": "fine [[B]]\nbad [[nonexistent]]",
		"B.md": "[[A]]",
	})

	report, err := Check(store, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.BrokenLinks) != 1 {
		t.Fatalf("broken = %+v, want exactly one", report.BrokenLinks)
	}
	b := report.BrokenLinks[0]
	if b.Source != "A.md" || b.Target != "nonexistent" || b.Line != 2 {
		t.Errorf("broken[0] = %+v", b)
	}
	if b.Context != "bad [[nonexistent]]" {
		t.Errorf("context = %q", b.Context)
	}
	if report.FilesChecked != 2 || report.LinksChecked != 3 {
		t.Errorf("checked files=%d links=%d", report.FilesChecked, report.LinksChecked)
	}
}

func TestCheck_CleanVault(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"A.md": "[[B]]",
		"B.md": "[[A]]",
	})

	report, err := Check(store, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.BrokenLinks) != 0 || len(report.OrphanedFiles) != 0 || len(report.Errors) != 0 {
		t.Errorf("report = %+v, want clean", report)
	}
}

func TestCheck_Orphans(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"hub.md":    "[[leaf]]",
		"leaf.md":   "no outbound links",
		"island.md": "nothing points here",
	})

	report, err := Check(store, "")
	if err != nil {
		t.Fatal(err)
	}
	// hub is never a link target, island neither; leaf is referenced.
	if len(report.OrphanedFiles) != 2 {
		t.Fatalf("orphans = %v", report.OrphanedFiles)
	}
	want := map[string]bool{"hub.md": true, "island.md": true}
	for _, o := range report.OrphanedFiles {
		if !want[o] {
			t.Errorf("unexpected orphan %q", o)
		}
	}
}

func TestCheck_SelfLinkDoesNotPreventOrphan(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"loop.md": "I reference [[loop]] and nothing else does",
		"hub.md":  "[[leaf]]",
		"leaf.md": "",
	})

	report, err := Check(store, "")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"loop.md": true, "hub.md": true}
	if len(report.OrphanedFiles) != 2 {
		t.Fatalf("orphans = %v, self-link must not count as inbound", report.OrphanedFiles)
	}
	for _, o := range report.OrphanedFiles {
		if !want[o] {
			t.Errorf("unexpected orphan %q", o)
		}
	}
}

func TestCheck_ScopedLinksOrphansVaultWide(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"A.md": "[[missing-a]]",
		"B.md": "[[missing-b]] and [[A]]",
	})

	report, err := Check(store, "A.md")
	if err != nil {
		t.Fatal(err)
	}
	if report.FilesChecked != 1 {
		t.Errorf("files checked = %d, want scope only", report.FilesChecked)
	}
	if len(report.BrokenLinks) != 1 || report.BrokenLinks[0].Target != "missing-a" {
		t.Errorf("broken = %+v, out-of-scope links must not be reported", report.BrokenLinks)
	}
	// Orphan detection still sees B.md's reference to A, so only B is
	// orphaned even though the scope is A.md.
	if len(report.OrphanedFiles) != 1 || report.OrphanedFiles[0] != "B.md" {
		t.Errorf("orphans = %v", report.OrphanedFiles)
	}
}

func TestCheck_BasenameResolvesNestedTarget(t *testing.T) {
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, map[string]string{
		"index.md":    "[[deep]] and [[sub/deep]]",
		"sub/deep.md": "[[index]]",
	})

	report, err := Check(store, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.BrokenLinks) != 0 {
		t.Errorf("broken = %+v, both bare and pathed forms should resolve", report.BrokenLinks)
	}
}
