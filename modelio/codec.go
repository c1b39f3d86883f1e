// Package modelio provides the shared zstd-compressed binary codec
// used as a MarshalBinary/UnmarshalBinary convenience by the tfidf,
// bayes, and lsi fitted-model types. It is never the interchange
// format — that is always the plain JSON document each package's
// MarshalJSON produces.
//
// Grounded on the teacher's cmd/rekal/cli/codec package, which wraps
// a *zstd.Encoder/*zstd.Decoder pair around an opaque payload the
// same way.
package modelio

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compress zstd-compresses payload at the default speed level.
func Compress(payload []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("modelio: create zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(payload, nil), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("modelio: create zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("modelio: decode: %w", err)
	}
	return out, nil
}
