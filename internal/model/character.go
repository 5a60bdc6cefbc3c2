// Package model defines the core character-learning data types.
package model

import (
	"strconv"
	"strings"
	"time"
)

// TypeUnknown marks records synthesized when no structured data was available.
const TypeUnknown = "未知"

// Grade bounds for learners and character levels.
const (
	MinLevel = 1
	MaxLevel = 6
)

// Level is a school grade from 1 to 6. It decodes from a JSON number or a
// numeric string; anything else, or a value outside the range, becomes 1.
type Level int

func (l *Level) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*l = MinLevel
		return nil
	}
	*l = ClampLevel(int(n))
	return nil
}

// ClampLevel maps out-of-range grades to the first grade.
func ClampLevel(n int) Level {
	if n < MinLevel || n > MaxLevel {
		return MinLevel
	}
	return Level(n)
}

// CharacterRecord is the structured explanation of one character.
type CharacterRecord struct {
	Character         string   `json:"character"`
	Type              string   `json:"type"`
	Level             Level    `json:"level"`
	Explanation       string   `json:"explanation"`
	Components        []string `json:"components"`
	EvolutionStages   []string `json:"evolution"`
	RelatedCharacters []string `json:"relatedCharacters"`
	CommonWords       []string `json:"commonWords"`
}

// Normalize fills the fields a valid record must carry.
func (r *CharacterRecord) Normalize(character string) {
	if r.Character == "" {
		r.Character = character
	}
	if r.Type == "" {
		r.Type = TypeUnknown
	}
	if r.Level == 0 {
		r.Level = MinLevel
	}
	if r.Components == nil {
		r.Components = []string{}
	}
	if r.EvolutionStages == nil {
		r.EvolutionStages = []string{}
	}
	if r.RelatedCharacters == nil {
		r.RelatedCharacters = []string{}
	}
	if r.CommonWords == nil {
		r.CommonWords = []string{}
	}
}

// RelatedCharacter is one entry of a related-characters answer.
type RelatedCharacter struct {
	Character string `json:"character"`
	Relation  string `json:"relation"`
	Type      string `json:"type"`
}

// Recommendation is one recommended character for a grade or interest.
type Recommendation struct {
	Character string `json:"character"`
	Type      string `json:"type"`
	Reason    string `json:"reason"`
}

// Evolution is a free-text description of a character's historical forms.
type Evolution struct {
	Character string   `json:"character"`
	Text      string   `json:"text"`
	Stages    []string `json:"stages"`
}

// Pathway is the curated character sequence for one grade.
type Pathway struct {
	Grade      int      `json:"grade"`
	Characters []string `json:"characters"`
}

// Profile is a learner's persisted state.
type Profile struct {
	UserID              string             `json:"userId"`
	Name                string             `json:"name"`
	Grade               int                `json:"grade"`
	Interests           []string           `json:"interests"`
	LearnedCharacters   []LearnedCharacter `json:"learnedCharacters"`
	CurrentLearningPath string             `json:"currentLearningPath"`
	LastActivity        time.Time          `json:"lastActivity"`
	Stats               ProfileStats       `json:"stats"`
}

// LearnedCharacter tracks review history for one character.
type LearnedCharacter struct {
	Character    string    `json:"character"`
	Proficiency  int       `json:"proficiency"`
	LearnedAt    time.Time `json:"learnedAt"`
	LastReviewed time.Time `json:"lastReviewed"`
	ReviewCount  int       `json:"reviewCount"`
}

// ProfileStats holds aggregate learning counters.
type ProfileStats struct {
	TotalLearned      int `json:"totalLearned"`
	Streak            int `json:"streak"`
	SessionsCompleted int `json:"sessionsCompleted"`
}

// ValidTypes are the structural categories used in prompts and defaults.
var ValidTypes = map[string]bool{
	"独体象形":      true,
	"基础会意":      true,
	"复合形声":      true,
	"形声字":       true,
	TypeUnknown: true,
}
