// Package catalog holds the text matching rules used to resolve free-text
// medicine names against the catalog. Every store filters and orders search
// results through these functions so that in-memory and SQL backends agree.
package catalog

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"medorder/internal/domain"
)

// Match quality, lower is better.
const (
	RankExact = iota
	RankPrefix
	RankSubstring
	rankNone
)

// Fold returns the comparison form of s: trimmed, NFC-normalized and
// case-folded. Devanagari and other caseless scripts pass through unchanged
// apart from normalization.
func Fold(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// A Caser is stateful, so one is created per call.
	return cases.Fold().String(norm.NFC.String(s))
}

// Contains reports whether field contains query, ignoring case.
func Contains(field, query string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	return strings.Contains(Fold(field), q)
}

func rankField(field, q string) int {
	f := Fold(field)
	switch {
	case f == "":
		return rankNone
	case f == q:
		return RankExact
	case strings.HasPrefix(f, q):
		return RankPrefix
	case strings.Contains(f, q):
		return RankSubstring
	default:
		return rankNone
	}
}

// MatchRank returns the best match quality of query across the name,
// localized name and generic name of m.
func MatchRank(m domain.Medicine, query string) (int, bool) {
	q := Fold(query)
	if q == "" {
		return rankNone, false
	}
	best := rankNone
	for _, field := range []string{m.Name, m.LocalizedName, m.GenericName} {
		if r := rankField(field, q); r < best {
			best = r
		}
	}
	return best, best != rankNone
}

// Matches reports whether any searchable field of m contains query.
func Matches(m domain.Medicine, query string) bool {
	_, ok := MatchRank(m, query)
	return ok
}

// Rank drops candidates that do not match query and orders the rest:
// exact before prefix before substring, then by folded name, then by id.
func Rank(candidates []domain.Medicine, query string) []domain.Medicine {
	type ranked struct {
		m    domain.Medicine
		rank int
		key  string
	}
	rs := make([]ranked, 0, len(candidates))
	for _, m := range candidates {
		r, ok := MatchRank(m, query)
		if !ok {
			continue
		}
		rs = append(rs, ranked{m: m, rank: r, key: Fold(m.Name)})
	}
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].rank != rs[j].rank {
			return rs[i].rank < rs[j].rank
		}
		if rs[i].key != rs[j].key {
			return rs[i].key < rs[j].key
		}
		return rs[i].m.ID < rs[j].m.ID
	})
	out := make([]domain.Medicine, len(rs))
	for i, r := range rs {
		out[i] = r.m
	}
	return out
}
