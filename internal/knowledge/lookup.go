package knowledge

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// Lookup bundles everything shown for one character.
type Lookup struct {
	Character Result[model.CharacterRecord]    `json:"character"`
	Analysis  Result[string]                   `json:"analysis"`
	Related   Result[[]model.RelatedCharacter] `json:"related"`
}

// Lookup fetches the record, analysis and related characters for c
// concurrently.
func (s *Service) Lookup(ctx context.Context, c string, p model.Profile) (*Lookup, error) {
	c, err := NormalizeCharacter(c)
	if err != nil {
		return nil, err
	}

	var out Lookup
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Character, err = s.Character(ctx, c)
		return err
	})
	g.Go(func() error {
		var err error
		out.Analysis, err = s.Analysis(ctx, c)
		return err
	})
	g.Go(func() error {
		var err error
		out.Related, err = s.Related(ctx, c, p)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
