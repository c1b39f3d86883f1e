package lsi

import (
	"encoding/json"

	"github.com/corpuskit/classifier/classifyerr"
	"github.com/corpuskit/classifier/linalg"
	"github.com/corpuskit/classifier/modelio"
	"github.com/corpuskit/classifier/textpipe"
)

const lsiVersion = 1

type itemDoc struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// decompositionDoc carries the rank and the cached reduced vectors of
// the truncated SVD when the index is built. Omitted entirely when the
// engine is not BUILT.
type decompositionDoc struct {
	Rank         int                  `json:"rank"`
	TokenVectors map[string][]float64 `json:"token_vectors"`
	ItemVectors  map[string][]float64 `json:"item_vectors"`
}

type document struct {
	Version      int                `json:"version"`
	Type         string             `json:"type"`
	AutoRebuild  bool               `json:"auto_rebuild"`
	Backend      string             `json:"backend"`
	Cutoff       float64            `json:"cutoff"`
	Items        []itemDoc          `json:"items"`
	Built        bool               `json:"built"`
	Decomposition *decompositionDoc `json:"decomposition,omitempty"`
}

// MarshalJSON renders the engine as the §6.2 LSI document: items,
// configuration, and — if built — the rank, each token's U*diag(S)
// vector and each item's V*diag(S) vector. The separate U, S and V
// factors are not stored.
func (e *Engine) MarshalJSON() ([]byte, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	doc := document{
		Version:     lsiVersion,
		Type:        "lsi",
		AutoRebuild: e.cfg.autoRebuild,
		Backend:     e.cfg.backend.String(),
		Cutoff:      e.cfg.cutoff,
		Built:       e.state == stateBuilt,
	}
	for _, id := range e.st.order {
		it := e.st.byID[id]
		doc.Items = append(doc.Items, itemDoc{ID: string(id), Text: it.text, Category: it.category})
	}
	if e.state == stateBuilt {
		dd := &decompositionDoc{
			Rank:         e.dec.k,
			TokenVectors: make(map[string][]float64, len(e.dec.tokenVectors)),
			ItemVectors:  make(map[string][]float64, len(e.st.order)),
		}
		for tok, vec := range e.dec.tokenVectors {
			dd.TokenVectors[string(tok)] = vec
		}
		for _, id := range e.st.order {
			dd.ItemVectors[string(id)] = e.st.byID[id].reduced
		}
		doc.Decomposition = dd
	}
	return json.Marshal(doc)
}

// UnmarshalJSON loads an engine from the §6.2 LSI document format.
func (e *Engine) UnmarshalJSON(data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return classifyerr.Wrap(classifyerr.InvalidArgument, "lsi.UnmarshalJSON", "malformed document", err)
	}
	if doc.Type != "lsi" {
		return classifyerr.New(classifyerr.InvalidArgument, "lsi.UnmarshalJSON", "type mismatch: expected lsi, got "+doc.Type)
	}
	if doc.Version > lsiVersion {
		return classifyerr.New(classifyerr.UnsupportedVersion, "lsi.UnmarshalJSON", "unsupported lsi document version")
	}

	backend, err := parseBackend(doc.Backend)
	if err != nil {
		return err
	}

	loaded := &Engine{
		cfg: config{
			autoRebuild: doc.AutoRebuild,
			backend:     backend,
			cutoff:      doc.Cutoff,
			lang:        textpipe.LangEnglish,
		},
		st:    newStore(),
		ids:   newIDSource(),
		state: stateEmpty,
	}

	for _, id := range doc.Items {
		it := &item{
			id:       ItemID(id.ID),
			text:     id.Text,
			category: id.Category,
			tokens:   textpipe.CleanWordHash(id.Text, loaded.cfg.lang),
		}
		loaded.st.add(it)
	}
	if loaded.st.len() > 0 {
		loaded.state = stateDirty
	}

	if doc.Built && doc.Decomposition != nil {
		tokenVectors := make(map[textpipe.Token][]float64, len(doc.Decomposition.TokenVectors))
		for tok, vec := range doc.Decomposition.TokenVectors {
			tokenVectors[textpipe.Token(tok)] = vec
		}
		for id, vec := range doc.Decomposition.ItemVectors {
			if it, ok := loaded.st.byID[ItemID(id)]; ok {
				it.reduced = vec
			}
		}
		loaded.dec = &decomposition{
			k:            doc.Decomposition.Rank,
			tokenVectors: tokenVectors,
			builtVersion: loaded.st.version,
		}
		loaded.state = stateBuilt
	}

	e.cfg = loaded.cfg
	e.st = loaded.st
	e.ids = loaded.ids
	e.state = loaded.state
	e.dec = loaded.dec
	return nil
}

func parseBackend(s string) (Backend, error) {
	switch s {
	case "native":
		return BackendNative, nil
	case "gonum":
		return BackendGonum, nil
	case "auto", "":
		return BackendAuto, nil
	default:
		return linalg.BackendAuto, classifyerr.New(classifyerr.InvalidArgument, "lsi.UnmarshalJSON", "unknown backend: "+s)
	}
}

// MarshalBinary zstd-compresses the canonical JSON document.
func (e *Engine) MarshalBinary() ([]byte, error) {
	js, err := e.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return modelio.Compress(js)
}

// UnmarshalBinary reverses MarshalBinary.
func (e *Engine) UnmarshalBinary(data []byte) error {
	js, err := modelio.Decompress(data)
	if err != nil {
		return err
	}
	return e.UnmarshalJSON(js)
}
