// Package knowledge answers character questions by combining the cache, the
// curated document store and the upstream chat model. Every lookup returns
// something displayable; only malformed input is reported as an error.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/gatzby-git/shuowenjiezi/internal/cache"
	"github.com/gatzby-git/shuowenjiezi/internal/model"
)

// ErrInvalidCharacter is returned for input that is not exactly one character.
var ErrInvalidCharacter = errors.New("请提供有效的单个汉字")

// Completer sends a prompt to a chat model. An empty model selects the
// completer's default.
type Completer interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Documents is the curated character store consulted before the upstream.
// A miss returns nil, nil.
type Documents interface {
	GetCharacter(ctx context.Context, character string) (*model.CharacterRecord, error)
}

// Source tells callers where a result came from.
type Source string

const (
	SourceFresh    Source = "fresh"
	SourceCache    Source = "cache"
	SourceDocument Source = "document"
	SourceDegraded Source = "degraded"
)

// Result carries a value with its provenance. Cause is set for degraded
// results produced after an upstream or extraction failure.
type Result[T any] struct {
	Value  T      `json:"value"`
	Source Source `json:"source"`
	Cause  error  `json:"-"`
}

// Degraded reports whether the value is a fallback.
func (r Result[T]) Degraded() bool { return r.Source == SourceDegraded }

// Options configures a Service.
type Options struct {
	// Model is passed to the completer for every first attempt.
	Model string
	// ReasoningModel, when set, gets one more try at a structured prompt
	// whose first reply could not be extracted.
	ReasoningModel string
	Documents      Documents
	Logger         *slog.Logger
}

// Service is the character knowledge facade.
type Service struct {
	llm       Completer
	cache     *cache.Cache
	docs      Documents
	model     string
	reasoning string
	logger    *slog.Logger
}

// New creates a Service.
func New(llm Completer, c *cache.Cache, opts Options) *Service {
	s := &Service{
		llm:       llm,
		cache:     c,
		docs:      opts.Documents,
		model:     opts.Model,
		reasoning: opts.ReasoningModel,
		logger:    opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.reasoning == s.model {
		s.reasoning = ""
	}
	return s
}

// NormalizeCharacter trims and NFC-normalizes input and checks that it is a
// single printable character.
func NormalizeCharacter(input string) (string, error) {
	c := norm.NFC.String(strings.TrimSpace(input))
	if utf8.RuneCountInString(c) != 1 {
		return "", ErrInvalidCharacter
	}
	r, _ := utf8.DecodeRuneInString(c)
	if r == utf8.RuneError || !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return "", ErrInvalidCharacter
	}
	return c, nil
}

// isSingleRune reports whether s is exactly one character after trimming.
func isSingleRune(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) == 1
}

// decodeItems unmarshals each element on its own, dropping the ones that do
// not fit T.
func decodeItems[T any](items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// completeStructured asks for a structured reply and runs decode on it. When
// decode fails and a reasoning model is configured the prompt is sent once
// more to that model. It returns the last reply text, the transport error if
// no reply was obtained, and the decode error if no reply could be decoded.
func (s *Service) completeStructured(ctx context.Context, kind, prompt string, decode func(string) error) (reply string, transportErr, contentErr error) {
	reply, err := s.llm.Complete(ctx, s.model, prompt)
	if err != nil {
		return "", err, nil
	}
	contentErr = decode(reply)
	if contentErr == nil || s.reasoning == "" {
		return reply, nil, contentErr
	}

	s.logger.Info("extraction failed, retrying with reasoning model",
		"kind", kind, "model", s.reasoning, "err", contentErr)
	second, err := s.llm.Complete(ctx, s.reasoning, prompt)
	if err != nil {
		s.logger.Warn("reasoning model failed", "kind", kind, "err", err)
		return reply, nil, contentErr
	}
	if err := decode(second); err != nil {
		return second, nil, err
	}
	return second, nil, nil
}
