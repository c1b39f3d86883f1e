package tfidf

import (
	"encoding/json"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/modelio"
)

const tfidfVersion = 1

type document struct {
	Version      int                `json:"version"`
	Type         string             `json:"type"`
	MinDF        dfBoundDoc         `json:"min_df"`
	MaxDF        dfBoundDoc         `json:"max_df"`
	SublinearTF  bool               `json:"sublinear_tf"`
	NgramRange   [2]int             `json:"ngram_range"`
	Vocabulary   map[string]int     `json:"vocabulary"`
	IDF          map[string]float64 `json:"idf"`
	NumDocuments int                `json:"num_documents"`
	Fitted       bool               `json:"fitted"`
}

// dfBoundDoc is the wire representation of a dfBound: an object
// holding the bound's value and a flag saying whether it is a fraction.
type dfBoundDoc struct {
	Fraction bool    `json:"fraction"`
	Value    float64 `json:"value"`
}

// MarshalJSON renders the vectorizer as the §6.2 document format.
func (v *Vectorizer) MarshalJSON() ([]byte, error) {
	doc := document{
		Version:      tfidfVersion,
		Type:         "tfidf",
		MinDF:        dfBoundDoc{Fraction: v.cfg.minDF.isFraction, Value: v.cfg.minDF.value},
		MaxDF:        dfBoundDoc{Fraction: v.cfg.maxDF.isFraction, Value: v.cfg.maxDF.value},
		SublinearTF:  v.cfg.sublinearTF,
		NgramRange:   [2]int{v.cfg.ngramLo, v.cfg.ngramHi},
		Vocabulary:   v.Vocabulary(),
		IDF:          v.IDF(),
		NumDocuments: v.numDocuments,
		Fitted:       v.fitted,
	}
	return json.Marshal(doc)
}

// UnmarshalJSON loads a vectorizer from the §6.2 document format.
func (v *Vectorizer) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return classifyerr.Wrap(classifyerr.InvalidArgument, "tfidf.UnmarshalJSON", "malformed document", err)
	}
	if doc.Type != "tfidf" {
		return classifyerr.New(classifyerr.InvalidArgument, "tfidf.UnmarshalJSON", "type mismatch: expected tfidf, got "+doc.Type)
	}
	if doc.Version > tfidfVersion {
		return classifyerr.New(classifyerr.UnsupportedVersion, "tfidf.UnmarshalJSON", "unsupported tfidf document version")
	}

	terms := make([]string, len(doc.Vocabulary))
	for term, idx := range doc.Vocabulary {
		if idx < 0 || idx >= len(terms) {
			return classifyerr.New(classifyerr.InvalidArgument, "tfidf.UnmarshalJSON", "vocabulary index out of range")
		}
		terms[idx] = term
	}
	idf := make([]float64, len(terms))
	for i, term := range terms {
		w, ok := doc.IDF[term]
		if !ok {
			return classifyerr.New(classifyerr.InvalidArgument, "tfidf.UnmarshalJSON", "idf missing for vocabulary term "+term)
		}
		idf[i] = w
	}

	loaded := &Vectorizer{
		cfg: config{
			minDF:       dfBound{isFraction: doc.MinDF.Fraction, value: doc.MinDF.Value},
			maxDF:       dfBound{isFraction: doc.MaxDF.Fraction, value: doc.MaxDF.Value},
			sublinearTF: doc.SublinearTF,
			ngramLo:     doc.NgramRange[0],
			ngramHi:     doc.NgramRange[1],
			lang:        defaultConfig().lang,
		},
		vocab:        doc.Vocabulary,
		terms:        terms,
		idf:          idf,
		numDocuments: doc.NumDocuments,
		fitted:       doc.Fitted,
	}
	*v = *loaded
	return nil
}

// MarshalBinary zstd-compresses the canonical JSON document.
func (v *Vectorizer) MarshalBinary() ([]byte, error) {
	js, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return modelio.Compress(js)
}

// UnmarshalBinary reverses MarshalBinary.
func (v *Vectorizer) UnmarshalBinary(data []byte) error {
	js, err := modelio.Decompress(data)
	if err != nil {
		return err
	}
	return v.UnmarshalJSON(js)
}
