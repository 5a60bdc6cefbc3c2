// Package store provides the persistence collaborators: an origin-scoped
// key-value store with a byte quota, and the curated character database.
// Both are backed by SQLite.
package store

import (
	"context"
	"errors"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// ErrQuotaExceeded is returned by SetItem when the write would push the
// store past its byte quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a string-keyed store scoped to one origin.
type KV interface {
	// GetItem returns the stored value and whether the key exists.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Documents is the curated character database. Lookups return nil or an
// empty result on a miss rather than an error.
type Documents interface {
	GetCharacter(ctx context.Context, character string) (*model.CharacterRecord, error)
	CharactersByLevel(ctx context.Context, level int) ([]model.CharacterRecord, error)
	CharactersByType(ctx context.Context, typ string) ([]model.CharacterRecord, error)
	LearningPathway(ctx context.Context, grade int) (*model.Pathway, error)
	InterestCategories(ctx context.Context) (map[string][]string, error)
}

var (
	_ KV        = (*SQLiteStore)(nil)
	_ Documents = (*SQLiteStore)(nil)
)
