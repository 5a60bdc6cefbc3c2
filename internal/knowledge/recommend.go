package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/extract"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// Recommendation count bounds.
const (
	DefaultCount = 10
	MaxCount     = 20
)

func clampCount(n int) int {
	if n < 1 || n > MaxCount {
		return DefaultCount
	}
	return n
}

type recommendationReply struct {
	Characters []json.RawMessage `json:"characters"`
}

// RecommendByLevel recommends characters for a school grade. Grades outside
// 1-6 are treated as grade 1 and counts outside 1-20 as 10.
func (s *Service) RecommendByLevel(ctx context.Context, level, count int) Result[[]model.Recommendation] {
	lv := model.ClampLevel(level)
	count = clampCount(count)
	return s.recommend(ctx, fmt.Sprintf("level_%d", lv), lv, levelPrompt(int(lv), count))
}

// RecommendByInterest recommends characters related to an interest for a
// school grade. An empty interest yields the grade's default list.
func (s *Service) RecommendByInterest(ctx context.Context, interest string, level, count int) Result[[]model.Recommendation] {
	lv := model.ClampLevel(level)
	interest = strings.TrimSpace(interest)
	if interest == "" {
		return Result[[]model.Recommendation]{Value: DefaultRecommendations(lv), Source: SourceDegraded}
	}
	count = clampCount(count)
	key := fmt.Sprintf("interest_%s_level_%d", interest, lv)
	return s.recommend(ctx, key, lv, interestPrompt(interest, int(lv), count))
}

// Recommend picks count recommendations for a learner: by their first
// interest when they have one, otherwise by grade.
func (s *Service) Recommend(ctx context.Context, p model.Profile, count int) Result[[]model.Recommendation] {
	if len(p.Interests) > 0 {
		return s.RecommendByInterest(ctx, p.Interests[0], p.Grade, count)
	}
	return s.RecommendByLevel(ctx, p.Grade, count)
}

func (s *Service) recommend(ctx context.Context, key string, lv model.Level, prompt string) Result[[]model.Recommendation] {
	var cached []model.Recommendation
	if s.cache.Get(ctx, cache.Recommendations, key, &cached) {
		return Result[[]model.Recommendation]{Value: cached, Source: SourceCache}
	}

	var recs []model.Recommendation
	_, transportErr, contentErr := s.completeStructured(ctx, "recommendation", prompt, func(text string) error {
		var reply recommendationReply
		if err := extract.Decode(text, &reply); err != nil {
			return err
		}
		recs = filterRecommendations(decodeItems[model.Recommendation](reply.Characters))
		return nil
	})
	if transportErr != nil {
		s.logger.Error("recommendation failed", "key", key, "err", transportErr)
		return Result[[]model.Recommendation]{Value: DefaultRecommendations(lv), Source: SourceDegraded, Cause: transportErr}
	}
	if contentErr != nil {
		s.logger.Warn("recommendation reply not structured", "key", key, "err", contentErr)
		return Result[[]model.Recommendation]{Value: DefaultRecommendations(lv), Source: SourceDegraded, Cause: contentErr}
	}
	if len(recs) == 0 {
		s.logger.Info("no usable recommendations, using defaults", "key", key)
		return Result[[]model.Recommendation]{Value: DefaultRecommendations(lv), Source: SourceDegraded}
	}

	s.cache.Put(ctx, cache.Recommendations, key, recs)
	return Result[[]model.Recommendation]{Value: recs, Source: SourceFresh}
}

func filterRecommendations(in []model.Recommendation) []model.Recommendation {
	out := make([]model.Recommendation, 0, len(in))
	for _, r := range in {
		if !isSingleRune(r.Character) {
			continue
		}
		r.Character = strings.TrimSpace(r.Character)
		out = append(out, r)
	}
	return out
}
