package knowledge

import (
	"context"
	"fmt"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/chunker"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// Analysis returns a free-text structural and etymological analysis of c.
func (s *Service) Analysis(ctx context.Context, c string) (Result[string], error) {
	c, err := NormalizeCharacter(c)
	if err != nil {
		return Result[string]{}, err
	}

	key := "analysis_" + c
	var text string
	if s.cache.Get(ctx, cache.Analyses, key, &text) {
		return Result[string]{Value: text, Source: SourceCache}, nil
	}

	text, err = s.llm.Complete(ctx, s.model, analysisPrompt(c))
	if err != nil {
		s.logger.Error("analysis failed", "character", c, "err", err)
		return Result[string]{
			Value:  fmt.Sprintf("抱歉，暂时无法分析\"%s\"字。请稍后再试。", c),
			Source: SourceDegraded,
			Cause:  err,
		}, nil
	}

	s.cache.Put(ctx, cache.Analyses, key, text)
	return Result[string]{Value: text, Source: SourceFresh}, nil
}

// Evolution describes how c changed from oracle-bone script to the modern
// form. Stages holds the description split into sections.
func (s *Service) Evolution(ctx context.Context, c string) (Result[model.Evolution], error) {
	c, err := NormalizeCharacter(c)
	if err != nil {
		return Result[model.Evolution]{}, err
	}

	key := "evolution_" + c
	var text string
	if s.cache.Get(ctx, cache.Evolutions, key, &text) {
		return Result[model.Evolution]{Value: newEvolution(c, text), Source: SourceCache}, nil
	}

	text, err = s.llm.Complete(ctx, s.model, evolutionPrompt(c))
	if err != nil {
		s.logger.Error("evolution failed", "character", c, "err", err)
		msg := fmt.Sprintf("抱歉，暂时无法获取\"%s\"的演化描述。请稍后再试。", c)
		return Result[model.Evolution]{
			Value:  model.Evolution{Character: c, Text: msg, Stages: []string{}},
			Source: SourceDegraded,
			Cause:  err,
		}, nil
	}

	s.cache.Put(ctx, cache.Evolutions, key, text)
	return Result[model.Evolution]{Value: newEvolution(c, text), Source: SourceFresh}, nil
}

func newEvolution(c, text string) model.Evolution {
	return model.Evolution{
		Character: c,
		Text:      text,
		Stages:    chunker.Texts(chunker.Chunk(text, chunker.DefaultOptions())),
	}
}
