// Package bayes implements a multinomial naive-Bayes text classifier
// over the shared textpipe token pipeline.
package bayes

import (
	"math"
	"strings"
	"unicode"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/textpipe"
)

// CategoryName is a normalized category label: trimmed, whitespace
// collapsed, first letter capitalized. Construct one with
// NormalizeCategory rather than a raw string conversion.
type CategoryName string

// NormalizeCategory applies the classifier's single category-name
// normalization rule, per the Design Note replacing ad hoc string
// keys with a typed, canonicalized identifier.
func NormalizeCategory(name string) CategoryName {
	fields := strings.Fields(name)
	collapsed := strings.Join(fields, " ")
	if collapsed == "" {
		return ""
	}
	runes := []rune(collapsed)
	runes[0] = unicode.ToUpper(runes[0])
	return CategoryName(string(runes))
}

// categoryState holds one category's token counts and document
// count. All fields are non-negative at every observable point.
type categoryState struct {
	tokens   textpipe.Frequencies
	docCount int
}

// Classifier is a multinomial naive-Bayes classifier. It is not safe
// for concurrent mutation; concurrent reads are safe provided no
// writer runs in parallel.
type Classifier struct {
	lang       textpipe.Lang
	order      []CategoryName // insertion order, for tie-breaking
	categories map[CategoryName]*categoryState
	vocab      map[textpipe.Token]struct{}
	totalTokens int
}

// New constructs a Classifier seeded with the given category names.
// Additional categories may be added later with AddCategory.
func New(categories ...string) *Classifier {
	c := &Classifier{
		lang:       textpipe.LangEnglish,
		categories: make(map[CategoryName]*categoryState),
		vocab:      make(map[textpipe.Token]struct{}),
	}
	for _, name := range categories {
		c.AddCategory(name)
	}
	return c
}

// AddCategory registers a new category if it does not already exist.
// The name is normalized via NormalizeCategory.
func (c *Classifier) AddCategory(name string) {
	norm := NormalizeCategory(name)
	if norm == "" {
		return
	}
	if _, ok := c.categories[norm]; ok {
		return
	}
	c.categories[norm] = &categoryState{tokens: make(textpipe.Frequencies)}
	c.order = append(c.order, norm)
}

// RemoveCategory deletes a category, subtracting its token totals
// from the classifier's global counters.
func (c *Classifier) RemoveCategory(name string) {
	norm := NormalizeCategory(name)
	state, ok := c.categories[norm]
	if !ok {
		return
	}
	for _, n := range state.tokens {
		c.totalTokens -= n
	}
	delete(c.categories, norm)
	for i, n := range c.order {
		if n == norm {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.rebuildVocab()
}

func (c *Classifier) rebuildVocab() {
	c.vocab = make(map[textpipe.Token]struct{})
	for _, state := range c.categories {
		for tok := range state.tokens {
			c.vocab[tok] = struct{}{}
		}
	}
}

// Categories returns the registered category names in insertion
// order.
func (c *Classifier) Categories() []CategoryName {
	out := make([]CategoryName, len(c.order))
	copy(out, c.order)
	return out
}

// Train increments category's document count and adds text's cleaned
// token counts to both the category's map and the global total.
// Training an unknown category registers it first.
func (c *Classifier) Train(category, text string) {
	norm := NormalizeCategory(category)
	if norm == "" {
		return
	}
	if _, ok := c.categories[norm]; !ok {
		c.AddCategory(category)
	}
	state := c.categories[norm]
	state.docCount++
	for tok, n := range textpipe.CleanWordHash(text, c.lang) {
		state.tokens.Add(tok, n)
		c.vocab[tok] = struct{}{}
		c.totalTokens += n
	}
}

// Untrain is the inverse of Train: each per-token count is decremented,
// floored at 0, and the category's document count decrements, never
// below 0. Untraining an unknown category is a no-op.
func (c *Classifier) Untrain(category, text string) {
	norm := NormalizeCategory(category)
	state, ok := c.categories[norm]
	if !ok {
		return
	}
	if state.docCount > 0 {
		state.docCount--
	}
	for tok, n := range textpipe.CleanWordHash(text, c.lang) {
		before := state.tokens[tok]
		dec := n
		if dec > before {
			dec = before
		}
		state.tokens.Add(tok, -dec)
		c.totalTokens -= dec
	}
	c.rebuildVocab()
}

// Classifications returns every category's unnormalized log-score for
// text. Categories with zero trained documents are omitted (their
// prior is -infinity). All returned scores are finite for non-empty
// text and a non-empty classifier.
func (c *Classifier) Classifications(text string) map[CategoryName]float64 {
	tokens := textpipe.CleanWordHash(text, c.lang)
	scores := make(map[CategoryName]float64)

	var totalDocs int
	for _, state := range c.categories {
		totalDocs += state.docCount
	}
	if totalDocs == 0 {
		return scores
	}

	vocabSize := float64(len(c.vocab))
	for _, name := range c.order {
		state := c.categories[name]
		if state.docCount == 0 {
			continue
		}
		var catTotal int
		for _, n := range state.tokens {
			catTotal += n
		}

		score := math.Log(float64(state.docCount) / float64(totalDocs))
		for tok, tf := range tokens {
			n := state.tokens[tok]
			p := float64(n+1) / (float64(catTotal) + vocabSize)
			score += float64(tf) * math.Log(p)
		}
		scores[name] = score
	}
	return scores
}

// Classify returns the argmax category for text under Classifications,
// breaking ties by the categories' insertion order. Returns "" if no
// category has any trained documents.
func (c *Classifier) Classify(text string) CategoryName {
	scores := c.Classifications(text)
	var best CategoryName
	bestScore := math.Inf(-1)
	for _, name := range c.order {
		score, ok := scores[name]
		if !ok {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = name
		}
	}
	return best
}

// validate is exercised by the serialization round-trip to reject
// loaded state whose invariants are violated.
func validate(c *Classifier) error {
	var sum int
	for _, state := range c.categories {
		if state.docCount < 0 {
			return classifyerr.New(classifyerr.InvalidArgument, "bayes.validate", "negative document count")
		}
		for _, n := range state.tokens {
			if n < 0 {
				return classifyerr.New(classifyerr.InvalidArgument, "bayes.validate", "negative token count")
			}
			sum += n
		}
	}
	if sum != c.totalTokens {
		return classifyerr.New(classifyerr.InvalidArgument, "bayes.validate", "total token count mismatch")
	}
	return nil
}
