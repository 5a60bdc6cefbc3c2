package knowledge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/deepseek"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

const xiuReply = "`{\"character\":\"休\",\"type\":\"基础会意\",\"level\":2,\"explanation\":\"...\",\"components\":[\"人\",\"木\"],\"evolution\":[],\"relatedCharacters\":[\"林\"],\"commonWords\":[\"休息\"]}`"

type call struct {
	model  string
	prompt string
}

// fakeLLM answers prompts with reply and records every call.
type fakeLLM struct {
	mu    sync.Mutex
	calls []call
	reply func(model, prompt string) (string, error)
}

func (f *fakeLLM) Complete(_ context.Context, model, prompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{model: model, prompt: prompt})
	f.mu.Unlock()
	if f.reply == nil {
		return "", errors.New("no transport")
	}
	return f.reply(model, prompt)
}

func (f *fakeLLM) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func replyWith(text string) func(string, string) (string, error) {
	return func(string, string) (string, error) { return text, nil }
}

func upstreamDown(model, _ string) (string, error) {
	return "", &deepseek.UpstreamError{Model: model, Attempts: 3, Err: errors.New("chat status 503")}
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, llm Completer, opts Options) (*Service, *store.SQLiteStore) {
	t.Helper()
	st := newTestStore(t)
	opts.Logger = quietLogger()
	c := cache.New(st, cache.Options{Logger: opts.Logger})
	return New(llm, c, opts), st
}

func TestNormalizeCharacter(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"休", "休", false},
		{" 日\n", "日", false},
		{"", "", true},
		{"休息", "", true},
		{" ", "", true},
		{"e\u0301", "\u00e9", false},
	}
	for _, tt := range tests {
		got, err := NormalizeCharacter(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizeCharacter(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeCharacter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCharacterEndToEndThenCache(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(xiuReply)}
	svc, st := newTestService(t, llm, Options{})

	res, err := svc.Character(ctx, "休")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if res.Source != SourceFresh {
		t.Errorf("expected fresh, got %s", res.Source)
	}
	r := res.Value
	if r.Character != "休" || r.Type != "基础会意" || r.Level != 2 || r.Explanation != "..." {
		t.Errorf("unexpected record: %+v", r)
	}
	if len(r.Components) != 2 || r.Components[0] != "人" || r.Components[1] != "木" {
		t.Errorf("unexpected components: %v", r.Components)
	}
	if len(r.EvolutionStages) != 0 || len(r.RelatedCharacters) != 1 || r.CommonWords[0] != "休息" {
		t.Errorf("unexpected lists: %+v", r)
	}
	if llm.count() != 1 {
		t.Errorf("expected exactly one upstream call on a miss, got %d", llm.count())
	}

	// Same store, fresh cache and no transport at all.
	offline := &fakeLLM{}
	svc2 := New(offline, cache.New(st, cache.Options{Logger: quietLogger()}), Options{Logger: quietLogger()})
	res, err = svc2.Character(ctx, "休")
	if err != nil {
		t.Fatalf("character from cache: %v", err)
	}
	if res.Source != SourceCache {
		t.Errorf("expected cache, got %s", res.Source)
	}
	if res.Value.Type != "基础会意" || res.Value.Level != 2 {
		t.Errorf("unexpected cached record: %+v", res.Value)
	}
	if offline.count() != 0 {
		t.Errorf("expected zero upstream calls on a hit, got %d", offline.count())
	}
}

func TestCharacterInvalidInput(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(xiuReply)}
	svc, _ := newTestService(t, llm, Options{})

	if _, err := svc.Character(context.Background(), "休息"); !errors.Is(err, ErrInvalidCharacter) {
		t.Errorf("expected ErrInvalidCharacter, got %v", err)
	}
	if llm.count() != 0 {
		t.Errorf("expected no upstream call for invalid input, got %d", llm.count())
	}
}

func TestCharacterPrefersDocuments(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(xiuReply)}
	st := newTestStore(t)
	st.PutCharacter(ctx, model.CharacterRecord{Character: "林", Type: "基础会意", Level: 2, Explanation: "两木为林"})

	svc := New(llm, cache.New(st, cache.Options{Logger: quietLogger()}), Options{Documents: st, Logger: quietLogger()})
	res, err := svc.Character(ctx, "林")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if res.Source != SourceDocument || res.Value.Explanation != "两木为林" {
		t.Errorf("expected document record, got %s %+v", res.Source, res.Value)
	}
	if llm.count() != 0 {
		t.Errorf("expected no upstream call, got %d", llm.count())
	}
}

func TestCharacterDegradedOnUnstructuredReply(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith("## 休\n\n**休**字由人和木组成，表示人靠着树休息。")}
	svc, _ := newTestService(t, llm, Options{})

	res, err := svc.Character(ctx, "休")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if !res.Degraded() || res.Cause == nil {
		t.Fatalf("expected degraded result with cause, got %s %v", res.Source, res.Cause)
	}
	r := res.Value
	if r.Type != model.TypeUnknown || r.Level != 1 {
		t.Errorf("expected unknown type and level 1, got %+v", r)
	}
	if strings.Contains(r.Explanation, "**") || !strings.Contains(r.Explanation, "人靠着树休息") {
		t.Errorf("expected cleaned plain-text explanation, got %q", r.Explanation)
	}
	if llm.count() != 1 {
		t.Errorf("expected no content retry without reasoning model, got %d calls", llm.count())
	}
}

func TestCharacterReasoningRetry(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: func(m, _ string) (string, error) {
		if m == deepseek.DefaultReasoningModel {
			return xiuReply, nil
		}
		return "休是一个会意字。", nil
	}}
	svc, _ := newTestService(t, llm, Options{ReasoningModel: deepseek.DefaultReasoningModel})

	res, err := svc.Character(ctx, "休")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if res.Source != SourceFresh || res.Value.Type != "基础会意" {
		t.Errorf("expected record from reasoning model, got %s %+v", res.Source, res.Value)
	}
	if llm.count() != 2 {
		t.Fatalf("expected two calls, got %d", llm.count())
	}
	if llm.calls[0].model != "" || llm.calls[1].model != deepseek.DefaultReasoningModel {
		t.Errorf("unexpected models: %q then %q", llm.calls[0].model, llm.calls[1].model)
	}
	if llm.calls[0].prompt != llm.calls[1].prompt {
		t.Error("expected the same prompt on the content retry")
	}
}

func TestCharacterReasoningRetryOnlyOnExtractionFailure(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(xiuReply)}
	svc, _ := newTestService(t, llm, Options{ReasoningModel: deepseek.DefaultReasoningModel})

	svc.Character(context.Background(), "休")
	if llm.count() != 1 {
		t.Errorf("expected one call when extraction succeeds, got %d", llm.count())
	}
}

func TestCharacterUpstreamFailure(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: upstreamDown}
	svc, _ := newTestService(t, llm, Options{ReasoningModel: deepseek.DefaultReasoningModel})

	res, err := svc.Character(ctx, "休")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if !res.Degraded() || !errors.Is(res.Cause, deepseek.ErrUpstream) {
		t.Fatalf("expected degraded upstream result, got %s %v", res.Source, res.Cause)
	}
	if res.Value.Explanation != msgCharacterUnavailable {
		t.Errorf("unexpected explanation %q", res.Value.Explanation)
	}
	if llm.count() != 1 {
		t.Errorf("expected no content retry after a transport failure, got %d calls", llm.count())
	}

	// Transport failures are not cached.
	llm.reply = replyWith(xiuReply)
	res, _ = svc.Character(ctx, "休")
	if res.Source != SourceFresh {
		t.Errorf("expected fresh after recovery, got %s", res.Source)
	}
}

func TestAnalysisAndEvolution(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: func(_, prompt string) (string, error) {
		if strings.Contains(prompt, "演变过程。") {
			return "1. 甲骨文：像人靠在树旁休息。\n2. 金文：人和木的位置固定下来。\n3. 楷书：成为今天的休字。", nil
		}
		return "休由人和木组成。", nil
	}}
	svc, _ := newTestService(t, llm, Options{})

	a, err := svc.Analysis(ctx, "休")
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if a.Source != SourceFresh || a.Value != "休由人和木组成。" {
		t.Errorf("unexpected analysis %s %q", a.Source, a.Value)
	}
	a, _ = svc.Analysis(ctx, "休")
	if a.Source != SourceCache {
		t.Errorf("expected cached analysis, got %s", a.Source)
	}

	e, err := svc.Evolution(ctx, "休")
	if err != nil {
		t.Fatalf("evolution: %v", err)
	}
	if len(e.Value.Stages) != 3 {
		t.Errorf("expected 3 stages, got %d: %v", len(e.Value.Stages), e.Value.Stages)
	}
	e, _ = svc.Evolution(ctx, "休")
	if e.Source != SourceCache || len(e.Value.Stages) != 3 {
		t.Errorf("expected cached evolution with stages, got %s %v", e.Source, e.Value.Stages)
	}

	if llm.count() != 2 {
		t.Errorf("expected two upstream calls, got %d", llm.count())
	}
}

func TestAnalysisAndEvolutionDegraded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeLLM{reply: upstreamDown}, Options{})

	a, _ := svc.Analysis(ctx, "休")
	if !a.Degraded() || a.Value != "抱歉，暂时无法分析\"休\"字。请稍后再试。" {
		t.Errorf("unexpected degraded analysis %q", a.Value)
	}
	e, _ := svc.Evolution(ctx, "休")
	if !e.Degraded() || !strings.Contains(e.Value.Text, "演化描述") {
		t.Errorf("unexpected degraded evolution %q", e.Value.Text)
	}
	if _, err := svc.Analysis(ctx, ""); !errors.Is(err, ErrInvalidCharacter) {
		t.Errorf("expected ErrInvalidCharacter, got %v", err)
	}
}

const recReply = `好的，推荐如下：
{"characters": [
  {"character": "人", "type": "独体象形", "reason": "像人侧立"},
  {"character": "大人", "type": "词语", "reason": "not a character"},
  {"character": "口", "type": "独体象形", "reason": "像张开的嘴"}
]}`

func TestRecommendByLevelClampsOutOfRange(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(recReply)}
	svc, st := newTestService(t, llm, Options{})

	res := svc.RecommendByLevel(ctx, 7, 10)
	if res.Source != SourceFresh {
		t.Fatalf("expected fresh, got %s (%v)", res.Source, res.Cause)
	}
	if len(res.Value) != 2 || res.Value[0].Character != "人" || res.Value[1].Character != "口" {
		t.Errorf("expected multi-character entries filtered, got %+v", res.Value)
	}
	if !strings.Contains(llm.calls[0].prompt, "小学1年级") {
		t.Errorf("expected grade 1 prompt, got %q", llm.calls[0].prompt)
	}

	blob, _, _ := st.GetItem(ctx, cache.StorageKey)
	if !strings.Contains(blob, `"level_1"`) {
		t.Errorf("expected level_1 cache key, got %s", blob)
	}

	res = svc.RecommendByLevel(ctx, 1, 10)
	if res.Source != SourceCache || llm.count() != 1 {
		t.Errorf("expected cache hit for clamped level, got %s after %d calls", res.Source, llm.count())
	}
}

func TestRecommendCountClamp(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(recReply)}
	svc, _ := newTestService(t, llm, Options{})

	svc.RecommendByLevel(context.Background(), 3, 50)
	if !strings.Contains(llm.calls[0].prompt, "请推荐10个") {
		t.Errorf("expected count clamped to 10, got %q", llm.calls[0].prompt)
	}
}

func TestRecommendDefaultsOnEmptyReply(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(`{"characters": [{"character": "大人"}]}`)}
	svc, _ := newTestService(t, llm, Options{})

	res := svc.RecommendByLevel(ctx, 2, 5)
	if !res.Degraded() || res.Cause != nil {
		t.Errorf("expected degraded without cause, got %s %v", res.Source, res.Cause)
	}
	if len(res.Value) != 5 || res.Value[0].Character != "林" {
		t.Errorf("expected grade 2 defaults, got %+v", res.Value)
	}

	// Defaults are not cached.
	svc.RecommendByLevel(ctx, 2, 5)
	if llm.count() != 2 {
		t.Errorf("expected a second upstream call, got %d", llm.count())
	}
}

func TestRecommendDefaultsOnFailure(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeLLM{reply: upstreamDown}, Options{})

	res := svc.RecommendByLevel(ctx, 4, 10)
	if !errors.Is(res.Cause, deepseek.ErrUpstream) || res.Value[0].Character != "楚" {
		t.Errorf("expected grade 4 defaults, got %+v (%v)", res.Value, res.Cause)
	}

	res = svc.RecommendByInterest(ctx, "动物", 9, 10)
	if res.Value[0].Character != "人" {
		t.Errorf("expected grade 1 defaults for clamped level, got %+v", res.Value)
	}
}

func TestRecommendByInterest(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(recReply)}
	svc, st := newTestService(t, llm, Options{})

	res := svc.RecommendByInterest(ctx, "", 3, 10)
	if !res.Degraded() || res.Value[0].Character != "森" || llm.count() != 0 {
		t.Errorf("expected grade 3 defaults without a call, got %+v", res.Value)
	}

	res = svc.RecommendByInterest(ctx, "自然", 3, 10)
	if res.Source != SourceFresh {
		t.Fatalf("expected fresh, got %s", res.Source)
	}
	if !strings.Contains(llm.calls[0].prompt, `与"自然"相关`) {
		t.Errorf("unexpected prompt %q", llm.calls[0].prompt)
	}
	blob, _, _ := st.GetItem(ctx, cache.StorageKey)
	if !strings.Contains(blob, "interest_自然_level_3") {
		t.Errorf("expected interest cache key, got %s", blob)
	}
}

func TestRecommendForProfile(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(recReply)}
	svc, _ := newTestService(t, llm, Options{})

	svc.Recommend(ctx, model.Profile{Grade: 2, Interests: []string{"动物", "自然"}}, DefaultCount)
	if !strings.Contains(llm.calls[0].prompt, `与"动物"相关`) {
		t.Errorf("expected first interest used, got %q", llm.calls[0].prompt)
	}

	svc.Recommend(ctx, model.Profile{Grade: 2}, DefaultCount)
	if !strings.Contains(llm.calls[1].prompt, "请推荐10个适合小学2年级") {
		t.Errorf("expected grade prompt, got %q", llm.calls[1].prompt)
	}
}

func TestDefaultRecommendationsEveryGrade(t *testing.T) {
	for lv := model.Level(1); lv <= model.MaxLevel; lv++ {
		recs := DefaultRecommendations(lv)
		if len(recs) == 0 {
			t.Errorf("grade %d has no defaults", lv)
		}
		for _, r := range recs {
			if !isSingleRune(r.Character) {
				t.Errorf("grade %d default %q is not one character", lv, r.Character)
			}
		}
	}
	recs := DefaultRecommendations(1)
	recs[0].Character = "X"
	if DefaultRecommendations(1)[0].Character != "人" {
		t.Error("expected defaults to be copied")
	}
}

func TestRelatedStructured(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(`{"related_characters": [
		{"character": "林", "relation": "同部件", "type": "基础会意"},
		{"character": "树木", "relation": "词", "type": "?"}
	]}`)}
	svc, _ := newTestService(t, llm, Options{})
	p := model.Profile{Grade: 2, Interests: []string{"自然"}}

	res, err := svc.Related(ctx, "木", p)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if res.Source != SourceFresh || len(res.Value) != 1 || res.Value[0].Character != "林" {
		t.Errorf("unexpected related %s %+v", res.Source, res.Value)
	}
	if !strings.Contains(llm.calls[0].prompt, "特别是与自然相关的汉字") {
		t.Errorf("expected interests in prompt, got %q", llm.calls[0].prompt)
	}

	res, _ = svc.Related(ctx, "木", p)
	if res.Source != SourceCache {
		t.Errorf("expected cached related, got %s", res.Source)
	}
}

func TestRelatedFallbackSplit(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith("林，森、休,本，树木,末、未、朱、杏、李")}
	svc, _ := newTestService(t, llm, Options{})

	res, err := svc.Related(ctx, "木", model.Profile{Grade: 1})
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if !res.Degraded() {
		t.Errorf("expected degraded, got %s", res.Source)
	}
	if len(res.Value) != 8 {
		t.Fatalf("expected 8 entries, got %d: %+v", len(res.Value), res.Value)
	}
	want := []string{"林", "森", "休", "本", "末", "未", "朱", "杏"}
	for i, r := range res.Value {
		if r.Character != want[i] || r.Relation != "相关字" || r.Type != model.TypeUnknown {
			t.Errorf("entry %d = %+v, want %s", i, r, want[i])
		}
	}
}

func TestRelatedUpstreamFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakeLLM{reply: upstreamDown}, Options{})

	res, err := svc.Related(context.Background(), "木", model.Profile{})
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if !res.Degraded() || res.Value == nil || len(res.Value) != 0 {
		t.Errorf("expected empty degraded list, got %s %+v", res.Source, res.Value)
	}
}

func TestLookupFansOut(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: func(_, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "结构化信息"):
			return xiuReply, nil
		case strings.Contains(prompt, "related_characters"):
			return `{"related_characters":[{"character":"林","relation":"同部件","type":"基础会意"}]}`, nil
		default:
			return "休由人和木组成。", nil
		}
	}}
	svc, _ := newTestService(t, llm, Options{})

	l, err := svc.Lookup(ctx, "休", model.Profile{Grade: 2})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if l.Character.Value.Type != "基础会意" || l.Analysis.Value == "" || len(l.Related.Value) != 1 {
		t.Errorf("unexpected lookup %+v", l)
	}
	if llm.count() != 3 {
		t.Errorf("expected three upstream calls, got %d", llm.count())
	}

	if _, err := svc.Lookup(ctx, "", model.Profile{}); !errors.Is(err, ErrInvalidCharacter) {
		t.Errorf("expected ErrInvalidCharacter, got %v", err)
	}
}

func TestRecommendKeepsValidItemsFromMixedReply(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: replyWith(`{"characters": [
		"人",
		{"character": 1, "type": "独体象形"},
		{"character": "口", "type": "独体象形", "reason": "像嘴巴"},
		{"character": "山", "type": "独体象形", "reason": "像山峰"}
	]}`)}
	svc, _ := newTestService(t, llm, Options{})

	res := svc.RecommendByLevel(ctx, 3, 10)
	if res.Source != SourceFresh {
		t.Fatalf("expected fresh, got %s (%v)", res.Source, res.Cause)
	}
	if len(res.Value) != 2 || res.Value[0].Character != "口" || res.Value[1].Character != "山" {
		t.Errorf("expected only the well-formed entries, got %+v", res.Value)
	}
}

func TestRelatedKeepsValidItemsFromMixedReply(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(`{"related_characters": [
		{"character": "林", "relation": "同部件", "type": "基础会意"},
		{"character": 1},
		"森"
	]}`)}
	svc, _ := newTestService(t, llm, Options{})

	res, err := svc.Related(context.Background(), "木", model.Profile{Grade: 2})
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if res.Source != SourceFresh || len(res.Value) != 1 || res.Value[0].Character != "林" {
		t.Errorf("expected the one well-formed entry, got %s %+v", res.Source, res.Value)
	}
}

func TestCharacterToleratesStringLists(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(`{"character":"休","type":"基础会意","level":2,"explanation":"人倚木而息","components":"人、木","evolution":[],"relatedCharacters":["林"],"commonWords":"休息"}`)}
	svc, _ := newTestService(t, llm, Options{})

	res, err := svc.Character(context.Background(), "休")
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	r := res.Value
	if res.Source != SourceFresh || r.Type != "基础会意" || r.Explanation != "人倚木而息" {
		t.Fatalf("expected structured record, got %s %+v", res.Source, r)
	}
	if len(r.Components) != 2 || r.Components[0] != "人" || r.Components[1] != "木" {
		t.Errorf("expected split components, got %q", r.Components)
	}
	if len(r.CommonWords) != 1 || r.CommonWords[0] != "休息" {
		t.Errorf("expected one common word, got %q", r.CommonWords)
	}
}

func TestRecommendReasoningRetry(t *testing.T) {
	llm := &fakeLLM{reply: func(m, _ string) (string, error) {
		if m == deepseek.DefaultReasoningModel {
			return recReply, nil
		}
		return "推荐：人、口、山", nil
	}}
	svc, _ := newTestService(t, llm, Options{ReasoningModel: deepseek.DefaultReasoningModel})

	res := svc.RecommendByLevel(context.Background(), 1, 10)
	if res.Source != SourceFresh || len(res.Value) != 2 {
		t.Errorf("expected recommendations from reasoning model, got %s %+v", res.Source, res.Value)
	}
	if llm.count() != 2 || llm.calls[1].model != deepseek.DefaultReasoningModel {
		t.Errorf("expected a reasoning retry, got %+v", llm.calls)
	}
}

func TestRelatedReasoningRetry(t *testing.T) {
	llm := &fakeLLM{reply: func(m, _ string) (string, error) {
		if m == deepseek.DefaultReasoningModel {
			return `{"related_characters":[{"character":"林","relation":"同部件","type":"基础会意"}]}`, nil
		}
		return "林和森都与木有关。", nil
	}}
	svc, _ := newTestService(t, llm, Options{ReasoningModel: deepseek.DefaultReasoningModel})

	res, err := svc.Related(context.Background(), "木", model.Profile{Grade: 1})
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if res.Source != SourceFresh || len(res.Value) != 1 || res.Value[0].Character != "林" {
		t.Errorf("expected related from reasoning model, got %s %+v", res.Source, res.Value)
	}
	if llm.count() != 2 || llm.calls[1].model != deepseek.DefaultReasoningModel {
		t.Errorf("expected a reasoning retry, got %+v", llm.calls)
	}
}

func TestRecommendForProfileHonoursCount(t *testing.T) {
	llm := &fakeLLM{reply: replyWith(recReply)}
	svc, _ := newTestService(t, llm, Options{})

	svc.Recommend(context.Background(), model.Profile{Grade: 2, Interests: []string{"动物"}}, 5)
	if !strings.Contains(llm.calls[0].prompt, `请推荐5个与"动物"相关`) {
		t.Errorf("expected interest prompt with count 5, got %q", llm.calls[0].prompt)
	}
}
