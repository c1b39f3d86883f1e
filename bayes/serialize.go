package bayes

import (
	"encoding/json"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/modelio"
	"github.com/corpuskit/classifier/textpipe"
)

const bayesVersion = 1

// document is the self-describing JSON wire format of §6.2.
type document struct {
	Version    int                      `json:"version"`
	Type       string                   `json:"type"`
	Categories []string                 `json:"categories"`
	Tokens     map[string]map[string]int `json:"tokens"`
	DocCounts  map[string]int           `json:"doc_counts"`
	Total      int                      `json:"total_tokens"`
}

// MarshalJSON renders the classifier as the self-describing document
// format specified in §6.2: version, type, ordered categories,
// per-category token maps, per-category document counts, global total.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	doc := document{
		Version:    bayesVersion,
		Type:       "bayes",
		Tokens:     make(map[string]map[string]int, len(c.categories)),
		DocCounts:  make(map[string]int, len(c.categories)),
		Total:      c.totalTokens,
	}
	for _, name := range c.order {
		doc.Categories = append(doc.Categories, string(name))
		state := c.categories[name]
		tokMap := make(map[string]int, len(state.tokens))
		for tok, n := range state.tokens {
			tokMap[string(tok)] = n
		}
		doc.Tokens[string(name)] = tokMap
		doc.DocCounts[string(name)] = state.docCount
	}
	return json.Marshal(doc)
}

// UnmarshalJSON loads a classifier from the §6.2 document format.
// Rejects mismatched type with InvalidArgument and versions newer
// than this implementation with UnsupportedVersion.
func (c *Classifier) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return classifyerr.Wrap(classifyerr.InvalidArgument, "bayes.UnmarshalJSON", "malformed document", err)
	}
	if doc.Type != "bayes" {
		return classifyerr.New(classifyerr.InvalidArgument, "bayes.UnmarshalJSON", "type mismatch: expected bayes, got "+doc.Type)
	}
	if doc.Version > bayesVersion {
		return classifyerr.New(classifyerr.UnsupportedVersion, "bayes.UnmarshalJSON", "unsupported bayes document version")
	}

	loaded := New()
	loaded.lang = textpipe.LangEnglish
	for _, name := range doc.Categories {
		loaded.AddCategory(name)
		norm := NormalizeCategory(name)
		state := loaded.categories[norm]
		state.docCount = doc.DocCounts[name]
		for tok, n := range doc.Tokens[name] {
			state.tokens.Add(textpipe.Token(tok), n)
		}
	}
	loaded.rebuildVocab()
	var total int
	for _, state := range loaded.categories {
		for _, n := range state.tokens {
			total += n
		}
	}
	loaded.totalTokens = total

	if err := validate(loaded); err != nil {
		return err
	}
	*c = *loaded
	return nil
}

// MarshalBinary zstd-compresses the canonical JSON document — an
// implementation convenience, never the interchange format itself.
func (c *Classifier) MarshalBinary() ([]byte, error) {
	js, err := c.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return modelio.Compress(js)
}

// UnmarshalBinary reverses MarshalBinary.
func (c *Classifier) UnmarshalBinary(data []byte) error {
	js, err := modelio.Decompress(data)
	if err != nil {
		return err
	}
	return c.UnmarshalJSON(js)
}
