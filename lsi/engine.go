package lsi

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/linalg"
	"github.com/corpuskit/classifier/textpipe"
)

// Backend selects the linear-algebra backend the engine's SVD runs
// on. Re-exported from linalg so callers configuring an Engine never
// need to import linalg directly.
type Backend = linalg.Backend

const (
	BackendAuto   = linalg.BackendAuto
	BackendNative = linalg.BackendNative
	BackendGonum  = linalg.BackendGonum
)

// defaultCutoff is the fraction of cumulative singular-value energy
// retained when truncating, per §4.5.
const defaultCutoff = 0.75

type config struct {
	autoRebuild bool
	backend     Backend
	cutoff      float64
	lang        textpipe.Lang
}

func defaultEngineConfig() config {
	return config{
		autoRebuild: true,
		backend:     BackendAuto,
		cutoff:      defaultCutoff,
		lang:        textpipe.LangEnglish,
	}
}

// Option configures an Engine at construction time.
type Option func(*config) error

// WithAutoRebuild toggles whether a query after a mutation triggers an
// implicit rebuild (true, the default) or fails with IndexNotBuilt
// until the caller calls BuildIndex explicitly (false).
func WithAutoRebuild(on bool) Option {
	return func(c *config) error {
		c.autoRebuild = on
		return nil
	}
}

// WithBackend selects the linear-algebra backend BuildIndex uses.
func WithBackend(b Backend) Option {
	return func(c *config) error {
		c.backend = b
		return nil
	}
}

// WithCutoff sets the cumulative singular-value energy fraction
// retained when truncating, in (0,1].
func WithCutoff(cutoff float64) Option {
	return func(c *config) error {
		if cutoff <= 0 || cutoff > 1 {
			return classifyerr.New(classifyerr.InvalidArgument, "lsi.Option", "cutoff must be in (0,1]")
		}
		c.cutoff = cutoff
		return nil
	}
}

// WithLang sets the stop-word language used to tokenize added items.
func WithLang(lang textpipe.Lang) Option {
	return func(c *config) error {
		c.lang = lang
		return nil
	}
}

// state is the engine's position in the EMPTY/DIRTY/BUILT machine
// described in §4.5.
type state int

const (
	stateEmpty state = iota
	stateDirty
	stateBuilt
)

// decomposition is the truncated SVD cached after a successful build.
type decomposition struct {
	k            int
	tokenVectors map[textpipe.Token][]float64
	builtVersion int
}

// Engine is an LSI index: an ordered document store plus a rebuild
// policy and a cached truncated SVD. Safe for concurrent reads once
// BUILT provided no mutator runs concurrently, per the single-writer
// model in §5; a RWMutex enforces that here.
type Engine struct {
	mu    sync.RWMutex
	cfg   config
	st    *store
	ids   *idSource
	state state
	dec   *decomposition
}

// New constructs an empty Engine.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Engine{
		cfg:   cfg,
		st:    newStore(),
		ids:   newIDSource(),
		state: stateEmpty,
	}, nil
}

// AddItem stores text with an optional category (pass "" for none),
// returning its new id. Bumps the store's version and moves the
// engine to DIRTY.
func (e *Engine) AddItem(text string, category string) ItemID {
	e.mu.Lock()
	defer e.mu.Unlock()

	it := &item{
		id:       e.ids.next(),
		text:     text,
		category: category,
		tokens:   textpipe.CleanWordHash(text, e.cfg.lang),
	}
	e.st.add(it)
	e.state = stateDirty
	e.dec = nil
	return it.id
}

// RemoveItem drops the item with the given id, if present. Returns
// false if no such item exists. Invalidates the cached decomposition.
func (e *Engine) RemoveItem(id ItemID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.st.remove(id)
	if removed {
		if e.st.len() == 0 {
			e.state = stateEmpty
		} else {
			e.state = stateDirty
		}
		e.dec = nil
	}
	return removed
}

// Items returns the ids of all stored items, in insertion order.
func (e *Engine) Items() []ItemID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ItemID, len(e.st.order))
	copy(out, e.st.order)
	return out
}

// Backend reports the configured linear-algebra backend.
func (e *Engine) Backend() Backend {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.backend
}

// Stats is a read-only snapshot of the engine's current shape, useful
// for diagnostics and tests beyond the core §6.1 surface.
type Stats struct {
	ItemCount    int
	VocabSize    int
	Built        bool
	Rank         int
	StoreVersion int
}

// Stats returns a snapshot of the engine's current size and build
// state.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rank := 0
	if e.dec != nil {
		rank = e.dec.k
	}
	return Stats{
		ItemCount:    e.st.len(),
		VocabSize:    len(e.st.termCounts),
		Built:        e.state == stateBuilt,
		Rank:         rank,
		StoreVersion: e.st.version,
	}
}

// BuildIndex assembles the term-document matrix over all stored
// items, computes a truncated SVD, and caches each item's and token's
// reduced-space vector. Follows §4.5 steps 1-7.
func (e *Engine) BuildIndex() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildIndexLocked()
}

func (e *Engine) buildIndexLocked() error {
	n := e.st.len()
	if n == 0 {
		return classifyerr.New(classifyerr.InvalidArgument, "lsi.BuildIndex", "no items to index")
	}
	terms := e.st.vocabulary()
	v := len(terms)
	if v == 0 {
		return classifyerr.New(classifyerr.InvalidArgument, "lsi.BuildIndex", "vocabulary is empty")
	}

	termIndex := make(map[textpipe.Token]int, v)
	for i, t := range terms {
		termIndex[t] = i
	}

	data := make([]float64, v*n)
	for d, id := range e.st.order {
		it := e.st.byID[id]
		for tok, count := range it.tokens {
			row, ok := termIndex[tok]
			if !ok {
				continue
			}
			data[row*n+d] = float64(count)
		}
	}
	a := linalg.NewDense(v, n, data)

	full := minInt(v, n)
	u, s, sv, err := linalg.SVD(a, full, e.cfg.backend)
	if err != nil {
		return err
	}

	k := chooseRank(s, e.cfg.cutoff)

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(maxInt(1, runtime.GOMAXPROCS(0)))

	tokenVectors := make(map[textpipe.Token][]float64, v)
	var tvMu sync.Mutex
	for row, tok := range terms {
		row, tok := row, tok
		g.Go(func() error {
			vec := make([]float64, k)
			for j := 0; j < k; j++ {
				vec[j] = u.At(row, j) * s[j]
			}
			tvMu.Lock()
			tokenVectors[tok] = vec
			tvMu.Unlock()
			return nil
		})
	}
	for d, id := range e.st.order {
		d, id := d, id
		g.Go(func() error {
			vec := make([]float64, k)
			for j := 0; j < k; j++ {
				vec[j] = sv.At(d, j) * s[j]
			}
			e.st.byID[id].reduced = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return classifyerr.Wrap(classifyerr.Numerical, "lsi.BuildIndex", "failed to cache reduced vectors", err)
	}

	e.dec = &decomposition{k: k, tokenVectors: tokenVectors, builtVersion: e.st.version}
	e.state = stateBuilt
	return nil
}

// chooseRank returns the smallest k such that the cumulative energy
// of the first k (descending) singular values reaches cutoff,
// clamped to [1, len(s)].
func chooseRank(s []float64, cutoff float64) int {
	if len(s) == 0 {
		return 0
	}
	var total float64
	for _, sv := range s {
		total += sv * sv
	}
	if total == 0 {
		return 1
	}
	var running float64
	for i, sv := range s {
		running += sv * sv
		if running/total >= cutoff {
			return i + 1
		}
	}
	return len(s)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// ensureQueryableLocked rebuilds if DIRTY and auto-rebuild is on,
// otherwise fails with IndexNotBuilt. Caller must hold e.mu (a write
// lock, since a rebuild may occur).
func (e *Engine) ensureQueryableLocked() error {
	switch e.state {
	case stateEmpty:
		return classifyerr.New(classifyerr.IndexNotBuilt, "lsi.query", "index has no items")
	case stateBuilt:
		if e.dec.builtVersion == e.st.version {
			return nil
		}
		e.state = stateDirty
		fallthrough
	case stateDirty:
		if !e.cfg.autoRebuild {
			return classifyerr.New(classifyerr.IndexNotBuilt, "lsi.query", "index is dirty and auto_rebuild is disabled")
		}
		return e.buildIndexLocked()
	default:
		return classifyerr.New(classifyerr.IndexNotBuilt, "lsi.query", "unknown engine state")
	}
}

// project maps text into the current reduced concept space: the sum
// of cached per-token vectors weighted by the text's clean token
// frequencies. Caller must hold at least a read lock and the engine
// must be BUILT.
func (e *Engine) project(text string) linalg.Vector {
	freq := textpipe.CleanWordHash(text, e.cfg.lang)
	out := make(linalg.Vector, e.dec.k)
	for tok, count := range freq {
		vec, ok := e.dec.tokenVectors[tok]
		if !ok {
			continue
		}
		for j, x := range vec {
			out[j] += x * float64(count)
		}
	}
	return out
}

// Classify projects text into concept space and returns the category
// of the most similar categorized item, or "" if no categorized item
// exists or the projection has zero norm.
func (e *Engine) Classify(text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureQueryableLocked(); err != nil {
		return "", err
	}

	q := e.project(text)
	if q.Norm() == 0 {
		return "", nil
	}

	bestSim := -2.0
	best := ""
	found := false
	for _, id := range e.st.order {
		it := e.st.byID[id]
		if !it.hasCategory() {
			continue
		}
		sim := linalg.CosineSimilarity(q, linalg.Vector(it.reduced))
		if !found || sim > bestSim {
			bestSim = sim
			best = it.category
			found = true
		}
	}
	if !found {
		return "", nil
	}
	return best, nil
}

type scored struct {
	id    ItemID
	order int
	sim   float64
}

func selectTopK(candidates []scored, k int) []ItemID {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sim != candidates[j].sim {
			return candidates[i].sim > candidates[j].sim
		}
		return candidates[i].order < candidates[j].order
	})
	if k < 0 {
		k = 0
	}
	if k > len(candidates) {
		k = len(candidates)
	}
	out := make([]ItemID, k)
	for i := 0; i < k; i++ {
		out[i] = candidates[i].id
	}
	return out
}

// Search returns up to topK item ids ordered by descending cosine
// similarity of their cached reduced vector to query's projection.
func (e *Engine) Search(query string, k int) ([]ItemID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureQueryableLocked(); err != nil {
		return nil, err
	}

	q := e.project(query)
	candidates := make([]scored, 0, e.st.len())
	for i, id := range e.st.order {
		it := e.st.byID[id]
		sim := linalg.CosineSimilarity(q, linalg.Vector(it.reduced))
		candidates = append(candidates, scored{id: id, order: i, sim: sim})
	}
	return selectTopK(candidates, k), nil
}

// FindRelated returns up to topK item ids most similar to idOrText,
// excluding idOrText itself when it names an existing item. Ties
// break by ascending insertion order, per §4.5 / §9.
func (e *Engine) FindRelated(idOrText string, k int) ([]ItemID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureQueryableLocked(); err != nil {
		return nil, err
	}

	exclude := ItemID("")
	var q linalg.Vector
	if it, ok := e.st.byID[ItemID(idOrText)]; ok {
		exclude = it.id
		q = linalg.Vector(it.reduced)
	} else {
		q = e.project(idOrText)
	}

	candidates := make([]scored, 0, e.st.len())
	for i, id := range e.st.order {
		if id == exclude {
			continue
		}
		it := e.st.byID[id]
		sim := linalg.CosineSimilarity(q, linalg.Vector(it.reduced))
		candidates = append(candidates, scored{id: id, order: i, sim: sim})
	}
	return selectTopK(candidates, k), nil
}
