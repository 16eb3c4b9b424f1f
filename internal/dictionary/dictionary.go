package dictionary

import (
	"context"
	"strings"
	"sync"
)

// Lookup is the dictionary capability consumed by the word pipeline. The
// construction of the underlying word lists is a collaborator concern; the
// core only needs membership and prefix tests.
type Lookup interface {
	Contains(language, word string) bool
	HasPrefix(language, prefix string) bool
	Words(language string) []string
}

// Arbiter supplies an AI plausibility verdict for a word that failed the
// dictionary check, used when too few peers are present to vote.
type Arbiter interface {
	Verdict(ctx context.Context, language, word string) (bool, error)
}

// Static is an in-memory Lookup over lower-cased word sets keyed by language.
type Static struct {
	mu       sync.RWMutex
	words    map[string]map[string]struct{}
	prefixes map[string]map[string]struct{}
	lists    map[string][]string
}

func NewStatic() *Static {
	return &Static{
		words:    make(map[string]map[string]struct{}),
		prefixes: make(map[string]map[string]struct{}),
		lists:    make(map[string][]string),
	}
}

// Load registers a word list for a language, replacing any previous list.
func (s *Static) Load(language string, words []string) {
	wordSet := make(map[string]struct{}, len(words))
	prefixSet := make(map[string]struct{})
	list := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := wordSet[w]; dup {
			continue
		}
		wordSet[w] = struct{}{}
		list = append(list, w)
		for i := 1; i <= len(w); i++ {
			prefixSet[w[:i]] = struct{}{}
		}
	}
	s.mu.Lock()
	s.words[language] = wordSet
	s.prefixes[language] = prefixSet
	s.lists[language] = list
	s.mu.Unlock()
}

func (s *Static) Contains(language, word string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.words[language]
	if !ok {
		return false
	}
	_, ok = set[strings.ToLower(word)]
	return ok
}

func (s *Static) HasPrefix(language, prefix string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.prefixes[language]
	if !ok {
		return false
	}
	_, ok = set[strings.ToLower(prefix)]
	return ok
}

func (s *Static) Words(language string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lists[language]
}

// NoArbiter rejects everything; installed when no AI capability is configured.
type NoArbiter struct{}

func (NoArbiter) Verdict(ctx context.Context, language, word string) (bool, error) {
	return false, nil
}
