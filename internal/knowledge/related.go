package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/extract"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

const (
	maxSplitRelated = 8
	relationGeneric = "相关字"
)

var listSeparators = regexp.MustCompile(`[,，、]`)

type relatedReply struct {
	Related *[]json.RawMessage `json:"related_characters"`
}

// Related suggests characters linked to c in form, sound or meaning, sized
// to the learner's grade and biased toward their interests. Results are
// cached for the recommendation TTL.
func (s *Service) Related(ctx context.Context, c string, p model.Profile) (Result[[]model.RelatedCharacter], error) {
	c, err := NormalizeCharacter(c)
	if err != nil {
		return Result[[]model.RelatedCharacter]{}, err
	}

	lv := model.ClampLevel(p.Grade)
	key := relatedKey(c, lv, p.Interests)

	var cached []model.RelatedCharacter
	if s.cache.Get(ctx, cache.Recommendations, key, &cached) {
		return Result[[]model.RelatedCharacter]{Value: cached, Source: SourceCache}, nil
	}

	var related []model.RelatedCharacter
	reply, transportErr, contentErr := s.completeStructured(ctx, "related", relatedPrompt(c, int(lv), p.Interests), func(text string) error {
		var r relatedReply
		if err := extract.Decode(text, &r); err != nil {
			return err
		}
		if r.Related == nil {
			return fmt.Errorf("reply has no related_characters: %w", extract.ErrNotFound)
		}
		related = filterRelated(decodeItems[model.RelatedCharacter](*r.Related))
		return nil
	})
	if transportErr != nil {
		s.logger.Error("related lookup failed", "character", c, "err", transportErr)
		return Result[[]model.RelatedCharacter]{Value: []model.RelatedCharacter{}, Source: SourceDegraded, Cause: transportErr}, nil
	}
	if contentErr != nil {
		s.logger.Warn("related reply not structured, splitting text", "character", c, "err", contentErr)
		return Result[[]model.RelatedCharacter]{Value: splitRelated(reply), Source: SourceDegraded, Cause: contentErr}, nil
	}

	s.cache.Put(ctx, cache.Recommendations, key, related)
	return Result[[]model.RelatedCharacter]{Value: related, Source: SourceFresh}, nil
}

func relatedKey(c string, lv model.Level, interests []string) string {
	key := fmt.Sprintf("related_%s_level_%d", c, lv)
	if len(interests) > 0 {
		key += "_interest_" + strings.Join(interests, ",")
	}
	return key
}

func filterRelated(in []model.RelatedCharacter) []model.RelatedCharacter {
	out := make([]model.RelatedCharacter, 0, len(in))
	for _, r := range in {
		if !isSingleRune(r.Character) {
			continue
		}
		r.Character = strings.TrimSpace(r.Character)
		out = append(out, r)
	}
	return out
}

// splitRelated reads a plain list such as "林，森、体" and keeps the
// single-character entries.
func splitRelated(reply string) []model.RelatedCharacter {
	out := []model.RelatedCharacter{}
	for _, tok := range listSeparators.Split(reply, -1) {
		if len(out) == maxSplitRelated {
			break
		}
		if !isSingleRune(tok) {
			continue
		}
		out = append(out, model.RelatedCharacter{
			Character: strings.TrimSpace(tok),
			Relation:  relationGeneric,
			Type:      model.TypeUnknown,
		})
	}
	return out
}
