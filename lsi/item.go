// Package lsi implements an incremental Latent Semantic Indexing
// engine: an ordered document store that, on demand, assembles a
// sparse term-document matrix, performs a truncated SVD, and serves
// classify/search/find_related queries via cosine similarity in the
// reduced concept space.
package lsi

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/corpuskit/classifier/textpipe"
)

// ItemID uniquely identifies an indexed item. Backed by a ULID, so ids
// minted in different milliseconds sort lexicographically by insertion
// time; ids minted within the same millisecond are not ordered. Matches
// the teacher's checkpoint/session id minting.
type ItemID string

// idSource mints new ItemIDs from a dedicated entropy source, the way
// the teacher's checkpoint command owns a single *rand.Rand for the
// lifetime of a run rather than reseeding per id.
type idSource struct {
	entropy *rand.Rand
}

func newIDSource() *idSource {
	return &idSource{entropy: rand.New(rand.NewSource(time.Now().UnixNano()))} //nolint:gosec
}

func (s *idSource) next() ItemID {
	return ItemID(ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String())
}

// item is one stored document: its raw text, optional category, the
// cleaned token-frequency map computed at add_item time, and its
// cached reduced-space vector (nil until the next successful build).
type item struct {
	id        ItemID
	text      string
	category  string // "" means uncategorized
	tokens    textpipe.Frequencies
	reduced   []float64 // cached V[d,:]*diag(S), invalidated by rebuild
}

func (it *item) hasCategory() bool { return it.category != "" }
