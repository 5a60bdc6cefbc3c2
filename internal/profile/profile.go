// Package profile persists the learner profile in the key-value store.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gatzby-git/shuowenjiezi/internal/model"
	"github.com/gatzby-git/shuowenjiezi/internal/store"
)

// StorageKey is the KV key holding the serialized profile.
const StorageKey = "userProfile"

// Manager loads, mutates and saves one learner profile. Save failures are
// logged and the in-memory profile stays authoritative.
type Manager struct {
	kv     store.KV
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	profile *model.Profile
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager backed by kv.
func NewManager(kv store.KV, opts ...Option) *Manager {
	m := &Manager{kv: kv, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Default returns a new first-grade profile.
func Default(now time.Time) model.Profile {
	return model.Profile{
		UserID:              "user_" + ulid.Make().String(),
		Name:                "小学生",
		Grade:               1,
		Interests:           []string{"自然", "动物"},
		LearnedCharacters:   []model.LearnedCharacter{},
		CurrentLearningPath: "独体象形",
		LastActivity:        now.UTC(),
	}
}

// Get returns a copy of the profile, creating and saving the default one
// on first use.
func (m *Manager) Get(ctx context.Context) model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)
	return clone(*m.profile)
}

// UpdateInterests replaces the learner's interests.
func (m *Manager) UpdateInterests(ctx context.Context, interests []string) model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)

	m.profile.Interests = append([]string{}, interests...)
	m.profile.LastActivity = m.now().UTC()
	m.save(ctx)
	return clone(*m.profile)
}

// SetGrade changes the learner's grade. Grades outside 1-6 are ignored.
func (m *Manager) SetGrade(ctx context.Context, grade int) model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)

	if grade >= model.MinLevel && grade <= model.MaxLevel {
		m.profile.Grade = grade
		m.profile.LastActivity = m.now().UTC()
		m.save(ctx)
	}
	return clone(*m.profile)
}

// MarkLearned records a study of character. A known character gets its
// proficiency and review time updated; a new one is appended and counted.
func (m *Manager) MarkLearned(ctx context.Context, character string, proficiency int) model.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)

	now := m.now().UTC()
	found := false
	for i := range m.profile.LearnedCharacters {
		lc := &m.profile.LearnedCharacters[i]
		if lc.Character == character {
			lc.Proficiency = proficiency
			lc.LastReviewed = now
			lc.ReviewCount++
			found = true
			break
		}
	}
	if !found {
		m.profile.LearnedCharacters = append(m.profile.LearnedCharacters, model.LearnedCharacter{
			Character:    character,
			Proficiency:  proficiency,
			LearnedAt:    now,
			LastReviewed: now,
			ReviewCount:  1,
		})
		m.profile.Stats.TotalLearned++
	}
	m.profile.LastActivity = now
	m.save(ctx)
	return clone(*m.profile)
}

// Learned returns the characters studied so far, in the order first learned.
func (m *Manager) Learned(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load(ctx)

	out := make([]string, 0, len(m.profile.LearnedCharacters))
	for _, lc := range m.profile.LearnedCharacters {
		out = append(out, lc.Character)
	}
	return out
}

// load reads the stored profile once. Callers hold m.mu.
func (m *Manager) load(ctx context.Context) {
	if m.profile != nil {
		return
	}

	blob, ok, err := m.kv.GetItem(ctx, StorageKey)
	if err != nil {
		m.logger.Error("load profile", "err", err)
	}
	if ok {
		var p model.Profile
		if err := json.Unmarshal([]byte(blob), &p); err != nil {
			m.logger.Error("decode profile, starting fresh", "err", err)
		} else {
			if p.LearnedCharacters == nil {
				p.LearnedCharacters = []model.LearnedCharacter{}
			}
			m.profile = &p
			return
		}
	}

	p := Default(m.now())
	m.profile = &p
	m.save(ctx)
}

// save writes the profile through. Callers hold m.mu.
func (m *Manager) save(ctx context.Context) {
	b, err := json.Marshal(m.profile)
	if err != nil {
		m.logger.Error("encode profile", "err", err)
		return
	}
	if err := m.kv.SetItem(ctx, StorageKey, string(b)); err != nil {
		m.logger.Error("save profile", "err", fmt.Errorf("user %s: %w", m.profile.UserID, err))
	}
}

func clone(p model.Profile) model.Profile {
	p.Interests = append([]string{}, p.Interests...)
	p.LearnedCharacters = append([]model.LearnedCharacter{}, p.LearnedCharacters...)
	return p
}
