package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/knowledge"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
	"github.com/gatzby-git/shuowenjiezi/internal/profile"
	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

// scripted answers prompts by matching a marker in the prompt text.
type scripted map[string]string

func (s scripted) Complete(_ context.Context, _, prompt string) (string, error) {
	for marker, reply := range s {
		if strings.Contains(prompt, marker) {
			return reply, nil
		}
	}
	return "休由人和木组成。", nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	llm := scripted{
		"结构化信息":              `{"character":"休","type":"基础会意","level":2,"explanation":"人倚木而息","components":["人","木"],"evolution":[],"relatedCharacters":["林"],"commonWords":["休息"]}`,
		"related_characters": `{"related_characters":[{"character":"林","relation":"同部件","type":"基础会意"}]}`,
		"请推荐":                `{"characters":[{"character":"日","type":"独体象形","reason":"像太阳"}]}`,
	}
	svc := knowledge.New(llm, cache.New(st, cache.Options{Logger: logger}), knowledge.Options{Documents: st, Logger: logger})

	return &Server{
		Knowledge: svc,
		Profiles:  profile.NewManager(st, profile.WithLogger(logger)),
		Addr:      "localhost:0",
		Logger:    logger,
	}
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func charPath(c, suffix string) string {
	return "/api/characters/" + url.PathEscape(c) + suffix
}

func TestHandleCharacter(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", charPath("休", ""), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res struct {
		Value  model.CharacterRecord `json:"value"`
		Source string                `json:"source"`
	}
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if res.Source != "fresh" || res.Value.Type != "基础会意" {
		t.Errorf("unexpected response %+v", res)
	}

	w = do(t, srv, "GET", charPath("休", ""), "")
	json.NewDecoder(w.Body).Decode(&res)
	if res.Source != "cache" {
		t.Errorf("expected cache on second request, got %s", res.Source)
	}
}

func TestHandleCharacterInvalid(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", charPath("休息", ""), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "error") {
		t.Errorf("expected error body, got %s", w.Body.String())
	}
}

func TestHandleAnalysisEvolutionRelated(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", charPath("休", "/analysis"), "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "人和木") {
		t.Errorf("analysis: %d %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", charPath("休", "/evolution"), "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"stages"`) {
		t.Errorf("evolution: %d %s", w.Code, w.Body.String())
	}

	w = do(t, srv, "GET", charPath("休", "/related"), "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "林") {
		t.Errorf("related: %d %s", w.Code, w.Body.String())
	}
}

func TestHandleLookup(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/lookup/"+url.PathEscape("休"), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var l map[string]json.RawMessage
	if err := json.NewDecoder(w.Body).Decode(&l); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	for _, k := range []string{"character", "analysis", "related"} {
		if _, ok := l[k]; !ok {
			t.Errorf("missing %q in lookup", k)
		}
	}
}

func TestHandleRecommendations(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/recommendations?level=9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"日"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}

	w = do(t, srv, "GET", "/api/recommendations?level=abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad level, got %d", w.Code)
	}

	w = do(t, srv, "GET", "/api/recommendations", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"source"`) {
		t.Errorf("profile recommendations: %d %s", w.Code, w.Body.String())
	}
}

func TestHandleProfileAndLearned(t *testing.T) {
	srv := testServer(t)

	w := do(t, srv, "GET", "/api/profile", "")
	var p model.Profile
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatalf("decoding profile: %v", err)
	}
	if p.Grade != 1 || !strings.HasPrefix(p.UserID, "user_") {
		t.Errorf("unexpected default profile %+v", p)
	}

	w = do(t, srv, "POST", "/api/profile/learned", `{"character":"休","proficiency":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	json.NewDecoder(w.Body).Decode(&p)
	if p.Stats.TotalLearned != 1 || p.LearnedCharacters[0].Proficiency != 2 {
		t.Errorf("unexpected profile after learning %+v", p)
	}

	w = do(t, srv, "POST", "/api/profile/learned", `{"character":"休息"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid character, got %d", w.Code)
	}

	w = do(t, srv, "PATCH", "/api/profile", `{"grade":3,"interests":["植物"]}`)
	json.NewDecoder(w.Body).Decode(&p)
	if p.Grade != 3 || len(p.Interests) != 1 || p.Interests[0] != "植物" {
		t.Errorf("unexpected updated profile %+v", p)
	}

	w = do(t, srv, "PATCH", "/api/profile", `{"grade":8}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for out-of-range grade, got %d", w.Code)
	}
}
