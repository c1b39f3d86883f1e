// Package tfidf implements a fitted TF-IDF vectorizer: vocabulary and
// IDF weights learned from a corpus, producing L2-normalized sparse
// vectors with configurable document-frequency pruning, sublinear TF
// scaling, and n-gram ranges.
package tfidf

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/textpipe"
)

// dfBound is a min_df/max_df bound: either an absolute document count
// or a fraction of the corpus size in [0,1].
type dfBound struct {
	isFraction bool
	value      float64
}

// config holds validated vectorizer configuration.
type config struct {
	minDF       dfBound
	maxDF       dfBound
	sublinearTF bool
	ngramLo     int
	ngramHi     int
	lang        textpipe.Lang
}

func defaultConfig() config {
	return config{
		minDF:   dfBound{isFraction: false, value: 1},
		maxDF:   dfBound{isFraction: false, value: math.MaxInt32},
		ngramLo: 1,
		ngramHi: 1,
		lang:    textpipe.LangEnglish,
	}
}

// Option configures a Vectorizer at construction time.
type Option func(*config) error

// WithMinDF sets the minimum document-frequency bound. An integer
// value (passed as a whole float64, e.g. 2.0, or 0) is absolute; a
// value in (0,1) is a fraction of the corpus.
func WithMinDF(v float64) Option {
	return func(c *config) error {
		b, err := parseDFBound(v)
		if err != nil {
			return err
		}
		c.minDF = b
		return nil
	}
}

// WithMaxDF sets the maximum document-frequency bound, same domain as
// WithMinDF.
func WithMaxDF(v float64) Option {
	return func(c *config) error {
		b, err := parseDFBound(v)
		if err != nil {
			return err
		}
		c.maxDF = b
		return nil
	}
}

// parseDFBound disambiguates the overloaded min_df/max_df domain: a
// value in (0,1) is a fraction of the corpus; 0 is always the literal
// absolute count zero (a fractional bound of 0 would make max_df
// always prune the whole vocabulary, which is never a useful
// configuration, so the absolute reading wins the tie); integers >= 1
// are absolute document counts.
func parseDFBound(v float64) (dfBound, error) {
	if v < 0 {
		return dfBound{}, classifyerr.New(classifyerr.InvalidArgument, "tfidf.Option", "df bound must be non-negative")
	}
	if v == 0 {
		return dfBound{isFraction: false, value: 0}, nil
	}
	if v < 1 {
		return dfBound{isFraction: true, value: v}, nil
	}
	if v != math.Trunc(v) {
		return dfBound{}, classifyerr.New(classifyerr.InvalidArgument, "tfidf.Option", "df bound >= 1 must be an integer document count")
	}
	return dfBound{isFraction: false, value: v}, nil
}

// WithSublinearTF enables 1+log(tf) scaling in place of raw tf.
func WithSublinearTF(on bool) Option {
	return func(c *config) error {
		c.sublinearTF = on
		return nil
	}
}

// WithNgramRange sets the inclusive [lo, hi] n-gram length range.
func WithNgramRange(lo, hi int) Option {
	return func(c *config) error {
		if lo < 1 || hi < lo {
			return classifyerr.New(classifyerr.InvalidArgument, "tfidf.Option", "ngram range must satisfy 1 <= lo <= hi")
		}
		c.ngramLo = lo
		c.ngramHi = hi
		return nil
	}
}

// WithLang sets the stop-word language tag used during tokenization.
func WithLang(lang textpipe.Lang) Option {
	return func(c *config) error {
		c.lang = lang
		return nil
	}
}

// Vectorizer is an immutable-once-fitted TF-IDF model.
type Vectorizer struct {
	cfg   config
	vocab map[string]int // n-gram token -> dense index
	terms []string       // index -> n-gram token, sorted at fit time
	idf   []float64      // index-aligned with terms
	numDocuments int
	fitted       bool
}

// NewVectorizer validates opts and returns an unfitted Vectorizer.
func NewVectorizer(opts ...Option) (*Vectorizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.maxDF.isFraction && !cfg.minDF.isFraction && cfg.maxDF.value < cfg.minDF.value {
		return nil, classifyerr.New(classifyerr.InvalidArgument, "tfidf.NewVectorizer", "max_df is below min_df")
	}
	return &Vectorizer{cfg: cfg}, nil
}

// Fitted reports whether Fit has been called successfully.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// NumDocuments returns the corpus size used at fit time.
func (v *Vectorizer) NumDocuments() int { return v.numDocuments }

// Vocabulary returns the n-gram token -> index mapping. The returned
// map is a copy; mutating it has no effect on the model.
func (v *Vectorizer) Vocabulary() map[string]int {
	out := make(map[string]int, len(v.vocab))
	for k, val := range v.vocab {
		out[k] = val
	}
	return out
}

// IDF returns the n-gram token -> IDF weight mapping, copied.
func (v *Vectorizer) IDF() map[string]float64 {
	out := make(map[string]float64, len(v.terms))
	for i, t := range v.terms {
		out[t] = v.idf[i]
	}
	return out
}

// FeatureNames returns the vocabulary's tokens in index order.
func (v *Vectorizer) FeatureNames() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// ngrams assembles contiguous n-grams of lengths [lo,hi] from an
// ordered token stream, joining multi-token grams with "_".
func ngrams(tokens []textpipe.Token, lo, hi int) []string {
	var out []string
	n := len(tokens)
	for size := lo; size <= hi; size++ {
		if size > n {
			continue
		}
		for i := 0; i+size <= n; i++ {
			if size == 1 {
				out = append(out, string(tokens[i]))
				continue
			}
			parts := make([]string, size)
			for j := 0; j < size; j++ {
				parts[j] = string(tokens[i+j])
			}
			out = append(out, strings.Join(parts, "_"))
		}
	}
	return out
}

// docNgramFreq returns the n-gram term-frequency map for one document.
func (v *Vectorizer) docNgramFreq(text string) map[string]int {
	tokens := textpipe.TokenizeOrdered(text, v.cfg.lang)
	freq := make(map[string]int)
	for _, g := range ngrams(tokens, v.cfg.ngramLo, v.cfg.ngramHi) {
		freq[g]++
	}
	return freq
}

// Fit learns the vocabulary and IDF weights from corpus. Re-fitting
// replaces the model atomically: on error the Vectorizer is left
// exactly as it was before the call.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return classifyerr.New(classifyerr.InvalidArgument, "tfidf.Fit", "corpus must be non-empty")
	}

	docFreqs := make([]map[string]int, len(corpus))
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(maxInt(1, runtime.GOMAXPROCS(0)))
	for i, doc := range corpus {
		i, doc := i, doc
		g.Go(func() error {
			docFreqs[i] = v.docNgramFreq(doc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return classifyerr.Wrap(classifyerr.InvalidArgument, "tfidf.Fit", "tokenization failed", err)
	}

	df := make(map[string]int)
	for _, freq := range docFreqs {
		for term := range freq {
			df[term]++
		}
	}

	n := len(corpus)
	minCount := boundToCount(v.cfg.minDF, n, true)
	maxCount := boundToCount(v.cfg.maxDF, n, false)

	var terms []string
	for term, count := range df {
		if count >= minCount && count <= maxCount {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	v.vocab = vocab
	v.terms = terms
	v.idf = idf
	v.numDocuments = n
	v.fitted = true
	return nil
}

func boundToCount(b dfBound, n int, isMin bool) int {
	if !b.isFraction {
		return int(b.value)
	}
	if isMin {
		return int(math.Ceil(b.value * float64(n)))
	}
	return int(math.Floor(b.value * float64(n)))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Transform projects text into the fitted vocabulary, returning an
// L2-normalized sparse vector keyed by n-gram token. Returns an empty
// map (not an error) when every token in text is out of vocabulary;
// returns NotFitted if called before Fit.
func (v *Vectorizer) Transform(text string) (map[string]float64, error) {
	if !v.fitted {
		return nil, classifyerr.New(classifyerr.NotFitted, "tfidf.Transform", "vectorizer is not fitted")
	}

	freq := v.docNgramFreq(text)
	weights := make(map[string]float64)
	for term, tf := range freq {
		idx, ok := v.vocab[term]
		if !ok {
			continue
		}
		tfWeight := float64(tf)
		if v.cfg.sublinearTF && tf > 0 {
			tfWeight = 1 + math.Log(tfWeight)
		}
		weights[term] = tfWeight * v.idf[idx]
	}

	var norm float64
	for _, w := range weights {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return map[string]float64{}, nil
	}
	for term := range weights {
		weights[term] /= norm
	}
	return weights, nil
}

// FitTransform fits the vectorizer on corpus, then transforms each
// document in input order.
func (v *Vectorizer) FitTransform(corpus []string) ([]map[string]float64, error) {
	if err := v.Fit(corpus); err != nil {
		return nil, err
	}
	out := make([]map[string]float64, len(corpus))
	for i, doc := range corpus {
		w, err := v.Transform(doc)
		if err != nil {
			return nil, fmt.Errorf("tfidf: fit_transform: %w", err)
		}
		out[i] = w
	}
	return out, nil
}
