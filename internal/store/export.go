package store

import (
	"context"
	"fmt"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// ExportCharacters returns every curated character record.
func (s *SQLiteStore) ExportCharacters(ctx context.Context) ([]model.CharacterRecord, error) {
	return s.queryCharacters(ctx,
		`SELECT character, type, level, explanation, components, evolution, related_characters, common_words
		 FROM characters ORDER BY level, character`)
}

// ImportCharacters stores records from an export, replacing existing
// entries for the same character. Records without a character are skipped.
func (s *SQLiteStore) ImportCharacters(ctx context.Context, records []model.CharacterRecord) (int, error) {
	imported := 0
	for _, r := range records {
		if r.Character == "" {
			continue
		}
		r.Normalize(r.Character)
		if err := s.PutCharacter(ctx, r); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

// Bundle is the portable form of the document store.
type Bundle struct {
	Characters         []model.CharacterRecord `json:"characters"`
	Pathways           []model.Pathway         `json:"pathways"`
	InterestCategories map[string][]string     `json:"interestCategories"`
}

// Export returns the whole document store.
func (s *SQLiteStore) Export(ctx context.Context) (*Bundle, error) {
	chars, err := s.ExportCharacters(ctx)
	if err != nil {
		return nil, fmt.Errorf("export characters: %w", err)
	}
	pathways, err := s.Pathways(ctx)
	if err != nil {
		return nil, fmt.Errorf("export pathways: %w", err)
	}
	categories, err := s.InterestCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("export interest categories: %w", err)
	}
	return &Bundle{Characters: chars, Pathways: pathways, InterestCategories: categories}, nil
}

// Import loads a bundle, replacing entries with the same keys. Interest
// categories are replaced only when the bundle carries some.
func (s *SQLiteStore) Import(ctx context.Context, b *Bundle) (int, error) {
	n, err := s.ImportCharacters(ctx, b.Characters)
	if err != nil {
		return n, err
	}
	for _, p := range b.Pathways {
		if p.Grade < model.MinLevel || p.Grade > model.MaxLevel {
			continue
		}
		if err := s.PutPathway(ctx, p); err != nil {
			return n, fmt.Errorf("import pathway %d: %w", p.Grade, err)
		}
	}
	if len(b.InterestCategories) > 0 {
		if err := s.PutInterestCategories(ctx, b.InterestCategories); err != nil {
			return n, err
		}
	}
	return n, nil
}
