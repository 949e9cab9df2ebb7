package cacheengine

import (
	"github.com/klauspost/compress/zstd"
)

const (
	compressMinBytes   = 1024
	compressMinRatioOK = 0.20 // must shrink by at least 20%
)

// compressor wraps a shared zstd encoder/decoder pair. Both EncodeAll and
// DecodeAll are safe for concurrent use per the klauspost/compress docs.
type compressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCompressor() (*compressor, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &compressor{enc: enc, dec: dec}, nil
}

// tryCompress returns (compressed, ratio, ok). ok is false when the payload
// is too small to bother, or compression didn't shrink it enough, in which
// case the caller must store the original payload uncompressed.
func (c *compressor) tryCompress(payload []byte) ([]byte, float64, bool) {
	if len(payload) < compressMinBytes {
		return nil, 1.0, false
	}
	compressed := c.enc.EncodeAll(payload, nil)
	ratio := float64(len(compressed)) / float64(len(payload))
	if ratio > 1.0-compressMinRatioOK {
		return nil, 1.0, false
	}
	return compressed, ratio, true
}

func (c *compressor) decompress(payload []byte) ([]byte, error) {
	return c.dec.DecodeAll(payload, nil)
}

func (c *compressor) close() {
	c.enc.Close()
	c.dec.Close()
}
