// Package matcher scores free-text product names against a store's limit
// catalog and picks the best matching catalog key.
//
// Matching runs in two phases. The fast path resolves exact and
// case-insensitive key equality. The fuzzy path tokenizes both sides and
// requires every catalog-key token to find a counterpart among the
// candidate's tokens: verbatim for numbers, verbatim or substring for
// words. The substring rule is deliberately withheld from numeric tokens
// so a count like "25" can never be mistaken for "250".
package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/herobront95-prog/limit-planner/internal/models"
	"github.com/herobront95-prog/limit-planner/internal/textnorm"
	"github.com/herobront95-prog/limit-planner/pkg/logger"
)

// Scores are integer ranks, not probabilities. A fully exact token match
// dominates any partial combination; key length breaks ties in favor of
// the longer, more specific catalog key.
const (
	exactTokenWeight   = 10000
	partialExactWeight = 1000
	partialTokenWeight = 100
)

// MatchResult is the outcome of matching one candidate name.
type MatchResult struct {
	Key     string
	Score   int
	Matched bool
}

// Matcher matches candidate product names against one limit catalog. It
// keeps a per-run memo of results, so each distinct candidate name is
// scored against the catalog at most once.
//
// A Matcher is built fresh for every planning run and is not safe for
// concurrent use; the catalog itself is never mutated.
type Matcher struct {
	catalog *models.LimitCatalog

	// keyTokens and loweredKeys are precomputed per catalog key, in the
	// catalog's insertion order. That order decides ties: among equal
	// scores the earlier key wins.
	keyTokens   [][]string
	loweredKeys []string

	cache  map[string]MatchResult
	logger logger.Logger
}

// New builds a matcher for one catalog, precomputing token sequences for
// every catalog key.
func New(catalog *models.LimitCatalog) *Matcher {
	keys := catalog.Keys()
	keyTokens := make([][]string, len(keys))
	loweredKeys := make([]string, len(keys))
	for i, key := range keys {
		keyTokens[i] = textnorm.Tokenize(key)
		loweredKeys[i] = strings.ToLower(strings.TrimSpace(key))
	}

	return &Matcher{
		catalog:     catalog,
		keyTokens:   keyTokens,
		loweredKeys: loweredKeys,
		cache:       make(map[string]MatchResult),
		logger:      logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// BestMatch returns the best matching catalog key for a candidate name, or
// ok=false when no key qualifies. Results are memoized per candidate name
// for the lifetime of the matcher.
func (m *Matcher) BestMatch(name string) (string, bool) {
	result := m.Match(name)
	return result.Key, result.Matched
}

// Match returns the full match result for a candidate name.
func (m *Matcher) Match(name string) MatchResult {
	if cached, ok := m.cache[name]; ok {
		return cached
	}

	result := m.match(name)
	m.cache[name] = result

	if result.Matched {
		m.logger.WithFields(logger.Fields{
			"candidate": name,
			"key":       result.Key,
			"score":     result.Score,
		}).Debug("Matched product to catalog key")
	}
	return result
}

func (m *Matcher) match(name string) MatchResult {
	// Fast path: exact key, then case-insensitive after trimming.
	if _, ok := m.catalog.Get(name); ok {
		return MatchResult{Key: name, Matched: true}
	}

	loweredName := strings.ToLower(strings.TrimSpace(name))
	for i, lowered := range m.loweredKeys {
		if lowered == loweredName {
			return MatchResult{Key: m.catalog.Keys()[i], Matched: true}
		}
	}

	return m.fuzzyMatch(name)
}

func (m *Matcher) fuzzyMatch(name string) MatchResult {
	candidateTokens := textnorm.Tokenize(name)

	best := MatchResult{}
	keys := m.catalog.Keys()

	for i, keyTokens := range m.keyTokens {
		if len(keyTokens) == 0 {
			continue
		}

		exact, partial := countTokenMatches(keyTokens, candidateTokens)
		if exact+partial < len(keyTokens) {
			continue
		}

		var score int
		if exact == len(keyTokens) {
			score = exact*exactTokenWeight + utf8.RuneCountInString(keys[i])
		} else {
			score = exact*partialExactWeight + partial*partialTokenWeight + utf8.RuneCountInString(keys[i])
		}

		// Strictly greater: on equal scores the earlier catalog key stays.
		if score > best.Score {
			best = MatchResult{Key: keys[i], Score: score, Matched: true}
		}
	}

	return best
}

// countTokenMatches counts how many key tokens are found among the
// candidate tokens: exact for verbatim hits, partial when a non-numeric
// key token occurs as a substring of a non-numeric candidate token.
func countTokenMatches(keyTokens, candidateTokens []string) (exact, partial int) {
	for _, kt := range keyTokens {
		if containsToken(candidateTokens, kt) {
			exact++
			continue
		}
		if textnorm.IsNumericToken(kt) {
			continue
		}
		for _, ct := range candidateTokens {
			if !textnorm.IsNumericToken(ct) && strings.Contains(ct, kt) {
				partial++
				break
			}
		}
	}
	return exact, partial
}

func containsToken(tokens []string, token string) bool {
	for _, t := range tokens {
		if t == token {
			return true
		}
	}
	return false
}
