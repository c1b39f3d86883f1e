package lsi

import (
	"github.com/corpuskit/classifier/textpipe"
)

// store is the ordered collection of items plus the bookkeeping the
// engine needs to decide whether a rebuild is due: global per-token
// document counts and a monotonically increasing version counter
// bumped on every mutation.
type store struct {
	order      []ItemID
	byID       map[ItemID]*item
	termCounts map[textpipe.Token]int
	version    int
}

func newStore() *store {
	return &store{
		byID:       make(map[ItemID]*item),
		termCounts: make(map[textpipe.Token]int),
	}
}

func (s *store) add(it *item) {
	s.order = append(s.order, it.id)
	s.byID[it.id] = it
	for tok := range it.tokens {
		s.termCounts[tok]++
	}
	s.version++
}

func (s *store) remove(id ItemID) bool {
	it, ok := s.byID[id]
	if !ok {
		return false
	}
	for tok := range it.tokens {
		s.termCounts[tok]--
		if s.termCounts[tok] <= 0 {
			delete(s.termCounts, tok)
		}
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.version++
	return true
}

func (s *store) get(id ItemID) (*item, bool) {
	it, ok := s.byID[id]
	return it, ok
}

func (s *store) len() int { return len(s.order) }

// vocabulary returns the deterministic (sorted) token ordering used
// to build the term-document matrix: the same list every time for a
// given term-count population, so rebuilds are reproducible.
func (s *store) vocabulary() []textpipe.Token {
	terms := make([]string, 0, len(s.termCounts))
	for tok := range s.termCounts {
		terms = append(terms, string(tok))
	}
	// insertion sort: vocabularies here are small relative to a
	// corpus-scale TF-IDF fit, and this avoids importing sort for a
	// single call site.
	for i := 1; i < len(terms); i++ {
		for j := i; j > 0 && terms[j-1] > terms[j]; j-- {
			terms[j-1], terms[j] = terms[j], terms[j-1]
		}
	}
	out := make([]textpipe.Token, len(terms))
	for i, t := range terms {
		out[i] = textpipe.Token(t)
	}
	return out
}
