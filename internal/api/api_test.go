package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashvale/lattice/internal/noteservice"
	"github.com/ashvale/lattice/internal/testutil"
)

func newTestServer(t *testing.T, notes map[string]string) *httptest.Server {
	t.Helper()
	_, store := testutil.TestVault(t)
	testutil.Seed(t, store, notes)
	svc := noteservice.NewService(store)
	srv := httptest.NewServer(NewRouter(svc, nil, false, "", nil))
	t.Cleanup(srv.Close)
	return srv
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatal(err)
	}
}

func TestGetNoteEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"note.md": "---\ntitle: Hello\n---\nbody",
	})

	resp, err := http.Get(srv.URL + "/notes/note.md")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var note noteservice.NoteDetail
	decode(t, resp, &note)
	if note.Title != "Hello" || note.Path != "note.md" {
		t.Errorf("note = %+v", note)
	}
}

func TestGetNoteEndpoint_EncodedSlash(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"topics/deep.md": "nested",
	})

	resp, err := http.Get(srv.URL + "/notes/topics%2Fdeep.md")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, encoded slash should resolve", resp.StatusCode)
	}
}

func TestGetNoteEndpoint_NotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/notes/missing.md")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCreateNoteEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	body := `{"path":"new.md","title":"New Note","body":"content"}`
	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var note noteservice.NoteDetail
	decode(t, resp, &note)
	if note.Title != "New Note" {
		t.Errorf("note = %+v", note)
	}

	// Same path again conflicts.
	resp, err = http.Post(srv.URL+"/notes", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestCreateNoteEndpoint_MissingFields(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/notes", "application/json", strings.NewReader(`{"path":"x.md"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestLinksAndBacklinksEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "[[b]] #tag",
		"b.md": "",
	})

	resp, err := http.Get(srv.URL + "/links/a.md")
	if err != nil {
		t.Fatal(err)
	}
	var ext struct {
		Internal []struct {
			Target string `json:"target"`
		} `json:"internal"`
	}
	decode(t, resp, &ext)
	if len(ext.Internal) != 1 || ext.Internal[0].Target != "b" {
		t.Errorf("internal = %+v", ext.Internal)
	}

	resp, err = http.Get(srv.URL + "/backlinks/b.md")
	if err != nil {
		t.Fatal(err)
	}
	var bl BacklinksResponse
	decode(t, resp, &bl)
	if len(bl.Backlinks) != 1 || bl.Backlinks[0].File != "a.md" {
		t.Errorf("backlinks = %+v", bl.Backlinks)
	}
}

func TestGraphEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "[[b]] #x #y",
		"b.md": "#x",
	})

	resp, err := http.Get(srv.URL + "/graph")
	if err != nil {
		t.Fatal(err)
	}
	var g GraphResponse
	decode(t, resp, &g)
	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("graph = %+v", g)
	}

	resp, err = http.Get(srv.URL + "/graph/tags")
	if err != nil {
		t.Fatal(err)
	}
	var tg GraphResponse
	decode(t, resp, &tg)
	if len(tg.Nodes) != 2 || len(tg.Edges) != 1 {
		t.Errorf("tag graph = %+v", tg)
	}
}

func TestIntegrityEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "[[gone]]",
	})

	resp, err := http.Get(srv.URL + "/integrity")
	if err != nil {
		t.Fatal(err)
	}
	var report struct {
		BrokenLinks []struct {
			Target string `json:"target"`
		} `json:"broken_links"`
	}
	decode(t, resp, &report)
	if len(report.BrokenLinks) != 1 || report.BrokenLinks[0].Target != "gone" {
		t.Errorf("report = %+v", report)
	}
}

func TestRenameEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"old.md": "x",
		"ref.md": "[[old]]",
	})

	body := `{"old_path":"old.md","new_path":"new.md","dry_run":false}`
	resp, err := http.Post(srv.URL+"/rename", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var result struct {
		Success       bool     `json:"success"`
		FilesToUpdate []string `json:"files_to_update"`
	}
	decode(t, resp, &result)
	if !result.Success || len(result.FilesToUpdate) != 1 {
		t.Errorf("result = %+v", result)
	}

	resp, err = http.Post(srv.URL+"/rename", "application/json",
		strings.NewReader(`{"old_path":"missing.md","new_path":"x.md"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSimilarityEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "#t\nalpha beta gamma",
		"b.md": "#t\nalpha beta gamma",
	})

	resp, err := http.Get(srv.URL + "/similarity?a=a.md&b=b.md")
	if err != nil {
		t.Fatal(err)
	}
	var s struct {
		Overall float64 `json:"overall"`
	}
	decode(t, resp, &s)
	if s.Overall <= 0 {
		t.Errorf("overall = %v", s.Overall)
	}

	resp, err = http.Get(srv.URL + "/similar/a.md?threshold=0.5&limit=5")
	if err != nil {
		t.Fatal(err)
	}
	var sim SimilarResponse
	decode(t, resp, &sim)
	if len(sim.Results) != 1 || sim.Results[0].Path != "b.md" {
		t.Errorf("results = %+v", sim.Results)
	}
}

func TestTodoEndpoints(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"tasks.md": "- [ ] first",
	})

	resp, err := http.Post(srv.URL+"/todos", "application/json",
		strings.NewReader(`{"path":"tasks.md","text":"second"}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var added struct {
		Line int `json:"line"`
	}
	decode(t, resp, &added)
	if added.Line != 2 {
		t.Errorf("line = %d", added.Line)
	}

	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/todos",
		strings.NewReader(`{"path":"tasks.md","line":1}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("toggle status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/todos/tasks.md")
	if err != nil {
		t.Fatal(err)
	}
	var tasks struct {
		Tasks []struct {
			Done bool `json:"done"`
		} `json:"tasks"`
	}
	decode(t, resp, &tasks)
	if len(tasks.Tasks) != 2 || !tasks.Tasks[0].Done {
		t.Errorf("tasks = %+v", tasks.Tasks)
	}
}

func TestOutlineEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"doc.md": "# A\n## B",
	})

	resp, err := http.Get(srv.URL + "/outline/doc.md")
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Outline []struct {
			Text     string `json:"text"`
			Children []struct {
				Text string `json:"text"`
			} `json:"children"`
		} `json:"outline"`
	}
	decode(t, resp, &out)
	if len(out.Outline) != 1 || out.Outline[0].Text != "A" || len(out.Outline[0].Children) != 1 {
		t.Errorf("outline = %+v", out.Outline)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"a.md": "#x [[a]]",
	})

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatal(err)
	}
	var snap struct {
		Notes int `json:"notes"`
	}
	decode(t, resp, &snap)
	if snap.Notes != 1 {
		t.Errorf("notes = %d", snap.Notes)
	}

	// No stats store wired: history is disabled.
	resp, err = http.Get(srv.URL + "/stats/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404 with history disabled", resp.StatusCode)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, store := testutil.TestVault(t)
	svc := noteservice.NewService(store)
	srv := httptest.NewServer(NewRouter(svc, nil, true, "secret", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/graph")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without token", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/graph", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with wrong token", resp.StatusCode)
	}

	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200 with valid token", resp.StatusCode)
	}
}
