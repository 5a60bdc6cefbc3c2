package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

const listLimit = 20

const interestCategoriesKey = "interestCategories"

// PutCharacter inserts or replaces a curated character record.
func (s *SQLiteStore) PutCharacter(ctx context.Context, r model.CharacterRecord) error {
	components, _ := json.Marshal(r.Components)
	evolution, _ := json.Marshal(r.EvolutionStages)
	related, _ := json.Marshal(r.RelatedCharacters)
	words, _ := json.Marshal(r.CommonWords)

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO characters
		 (character, type, level, explanation, components, evolution, related_characters, common_words)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Character, r.Type, int(r.Level), r.Explanation,
		string(components), string(evolution), string(related), string(words))
	if err != nil {
		return fmt.Errorf("put character %q: %w", r.Character, err)
	}
	return nil
}

// GetCharacter returns the curated record for character, or nil if absent.
func (s *SQLiteStore) GetCharacter(ctx context.Context, character string) (*model.CharacterRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT character, type, level, explanation, components, evolution, related_characters, common_words
		 FROM characters WHERE character = ?`, character)
	r, err := scanCharacter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CharactersByLevel returns up to 20 curated records for a grade.
func (s *SQLiteStore) CharactersByLevel(ctx context.Context, level int) ([]model.CharacterRecord, error) {
	return s.queryCharacters(ctx,
		`SELECT character, type, level, explanation, components, evolution, related_characters, common_words
		 FROM characters WHERE level = ? ORDER BY character LIMIT ?`, level, listLimit)
}

// CharactersByType returns up to 20 curated records of a structural type.
func (s *SQLiteStore) CharactersByType(ctx context.Context, typ string) ([]model.CharacterRecord, error) {
	return s.queryCharacters(ctx,
		`SELECT character, type, level, explanation, components, evolution, related_characters, common_words
		 FROM characters WHERE type = ? ORDER BY character LIMIT ?`, typ, listLimit)
}

func (s *SQLiteStore) queryCharacters(ctx context.Context, query string, args ...interface{}) ([]model.CharacterRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.CharacterRecord{}
	for rows.Next() {
		r, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PutPathway stores the curated sequence for a grade.
func (s *SQLiteStore) PutPathway(ctx context.Context, p model.Pathway) error {
	chars, _ := json.Marshal(p.Characters)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO learning_pathways (grade, characters) VALUES (?, ?)`,
		p.Grade, string(chars))
	return err
}

// LearningPathway returns the pathway for grade; a missing pathway yields
// one with no characters.
func (s *SQLiteStore) LearningPathway(ctx context.Context, grade int) (*model.Pathway, error) {
	p := &model.Pathway{Grade: grade, Characters: []string{}}

	var chars string
	err := s.db.QueryRowContext(ctx,
		`SELECT characters FROM learning_pathways WHERE grade = ?`, grade).Scan(&chars)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(chars), &p.Characters); err != nil {
		return nil, fmt.Errorf("decode pathway %d: %w", grade, err)
	}
	return p, nil
}

// Pathways returns every stored pathway ordered by grade.
func (s *SQLiteStore) Pathways(ctx context.Context) ([]model.Pathway, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT grade, characters FROM learning_pathways ORDER BY grade`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pathways := []model.Pathway{}
	for rows.Next() {
		var p model.Pathway
		var chars string
		if err := rows.Scan(&p.Grade, &chars); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(chars), &p.Characters); err != nil {
			return nil, fmt.Errorf("decode pathway %d: %w", p.Grade, err)
		}
		pathways = append(pathways, p)
	}
	return pathways, rows.Err()
}

// PutInterestCategories replaces the interest category table.
func (s *SQLiteStore) PutInterestCategories(ctx context.Context, categories map[string][]string) error {
	b, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, interestCategoriesKey, string(b))
	return err
}

// InterestCategories returns interest name → example characters. Missing
// settings yield an empty map.
func (s *SQLiteStore) InterestCategories(ctx context.Context) (map[string][]string, error) {
	categories := map[string][]string{}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, interestCategoriesKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return categories, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(value), &categories); err != nil {
		return nil, fmt.Errorf("decode interest categories: %w", err)
	}
	return categories, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanCharacter(row scanner) (model.CharacterRecord, error) {
	var r model.CharacterRecord
	var level int
	var components, evolution, related, words sql.NullString

	err := row.Scan(&r.Character, &r.Type, &level, &r.Explanation,
		&components, &evolution, &related, &words)
	if err != nil {
		return r, err
	}

	r.Level = model.ClampLevel(level)
	if components.Valid {
		json.Unmarshal([]byte(components.String), &r.Components)
	}
	if evolution.Valid {
		json.Unmarshal([]byte(evolution.String), &r.EvolutionStages)
	}
	if related.Valid {
		json.Unmarshal([]byte(related.String), &r.RelatedCharacters)
	}
	if words.Valid {
		json.Unmarshal([]byte(words.String), &r.CommonWords)
	}
	r.Normalize(r.Character)

	return r, nil
}
