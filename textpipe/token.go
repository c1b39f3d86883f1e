// Package textpipe normalizes raw text into the token streams and
// term-frequency maps consumed by the bayes, tfidf, and lsi packages.
package textpipe

// Token is a lowercase ASCII stem produced by CleanWordHash or
// TokenizeOrdered. WordHash tokens are not stemmed but still carry
// this type for uniformity with the rest of the pipeline.
type Token string

// Frequencies maps a Token to the number of times it occurred. Zero
// values never appear: a token either has a positive count or is
// absent from the map.
type Frequencies map[Token]int

// Add increments the count for tok by delta, removing the entry if
// the result is not positive.
func (f Frequencies) Add(tok Token, delta int) {
	n := f[tok] + delta
	if n <= 0 {
		delete(f, tok)
		return
	}
	f[tok] = n
}

// Lang identifies a stop-word table. The zero value, like any
// unregistered tag, selects the English table.
type Lang string

// LangEnglish is the default, always-registered stop-word language.
const LangEnglish Lang = "en"

const (
	minTokenLen = 3
	maxTokenLen = 25
)
