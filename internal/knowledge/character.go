package knowledge

import (
	"context"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/extract"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

const (
	explanationExcerpt = 500

	msgCharacterUnavailable = "抱歉，无法获取该汉字的信息。"
)

// Character returns the structured record for c, consulting the cache, then
// the document store, then the upstream model.
func (s *Service) Character(ctx context.Context, c string) (Result[model.CharacterRecord], error) {
	c, err := NormalizeCharacter(c)
	if err != nil {
		return Result[model.CharacterRecord]{}, err
	}

	var cached model.CharacterRecord
	if s.cache.Get(ctx, cache.Characters, c, &cached) {
		s.logger.Debug("character from cache", "character", c)
		return Result[model.CharacterRecord]{Value: cached, Source: SourceCache}, nil
	}

	if s.docs != nil {
		doc, err := s.docs.GetCharacter(ctx, c)
		if err != nil {
			s.logger.Warn("document lookup failed", "character", c, "err", err)
		} else if doc != nil {
			doc.Normalize(c)
			return Result[model.CharacterRecord]{Value: *doc, Source: SourceDocument}, nil
		}
	}

	var rec model.CharacterRecord
	reply, transportErr, contentErr := s.completeStructured(ctx, "character", characterPrompt(c), func(text string) error {
		rec = model.CharacterRecord{}
		return extract.Decode(text, &rec)
	})
	if transportErr != nil {
		s.logger.Error("character lookup failed", "character", c, "err", transportErr)
		return Result[model.CharacterRecord]{
			Value:  unavailableRecord(c),
			Source: SourceDegraded,
			Cause:  transportErr,
		}, nil
	}

	res := Result[model.CharacterRecord]{Source: SourceFresh}
	if contentErr != nil {
		s.logger.Warn("character reply not structured", "character", c, "err", contentErr)
		rec = model.CharacterRecord{
			Character:   c,
			Type:        model.TypeUnknown,
			Level:       model.MinLevel,
			Explanation: extract.PlainText(reply, explanationExcerpt),
		}
		res.Source = SourceDegraded
		res.Cause = contentErr
	}
	if rec.Character == "" {
		rec.Character = c
	}
	rec.Normalize(c)
	res.Value = rec

	s.cache.Put(ctx, cache.Characters, c, rec)
	return res, nil
}

func unavailableRecord(c string) model.CharacterRecord {
	rec := model.CharacterRecord{Character: c, Explanation: msgCharacterUnavailable}
	rec.Normalize(c)
	return rec
}
