// Package compression provides payload compression for the broker transport.
// Envelope frames are compressed whole before publishing and decompressed
// whole on consumption, so the API is byte-oriented rather than streaming.
//
// Each codec carries a stable one-byte wire identifier used in message
// headers; the identifiers must not be reordered.
package compression

import (
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/chronodb-go/pkg/errors"
)

// Codec identifies a payload compression scheme.
type Codec uint8

const (
	// CodecNone passes payloads through untouched
	CodecNone Codec = 0
	// CodecLZ4 uses the LZ4 frame format, fastest with decent ratio
	CodecLZ4 Codec = 1
	// CodecS2 uses S2, Snappy-compatible with better compression
	CodecS2 Codec = 2
	// CodecZstd uses Zstandard, best ratio at good speed
	CodecZstd Codec = 3
)

// String returns the codec name as used in configs and message headers.
func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecS2:
		return "s2"
	case CodecZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// ParseCodec resolves a config string to a codec. The empty string means none.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "lz4":
		return CodecLZ4, nil
	case "s2":
		return CodecS2, nil
	case "zstd":
		return CodecZstd, nil
	default:
		return CodecNone, errors.Newf(errors.ErrorTypeConfig, "unknown compression codec %q", name)
	}
}

// Compressor compresses and decompresses whole payloads.
// Implementations are safe for concurrent use.
type Compressor interface {
	// Codec returns the scheme this compressor implements.
	Codec() Codec
	// Compress returns the compressed payload. The input is not modified.
	Compress(data []byte) ([]byte, error)
	// Decompress returns the original payload. The input is not modified.
	Decompress(data []byte) ([]byte, error)
}

// New returns a compressor for the codec.
func New(codec Codec) (Compressor, error) {
	switch codec {
	case CodecNone:
		return noneCompressor{}, nil
	case CodecLZ4:
		return &lz4Compressor{}, nil
	case CodecS2:
		return s2Compressor{}, nil
	case CodecZstd:
		return newZstdCompressor()
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown compression codec %d", uint8(codec))
	}
}

type noneCompressor struct{}

func (noneCompressor) Codec() Codec                           { return CodecNone }
func (noneCompressor) Compress(data []byte) ([]byte, error)   { return data, nil }
func (noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

type lz4Compressor struct {
	// lz4.Compressor keeps internal state, so instances are pooled rather
	// than shared.
	pool sync.Pool
}

func (c *lz4Compressor) Codec() Codec { return CodecLZ4 }

func (c *lz4Compressor) Compress(data []byte) ([]byte, error) {
	comp, _ := c.pool.Get().(*lz4.Compressor)
	if comp == nil {
		comp = &lz4.Compressor{}
	}
	defer c.pool.Put(comp)

	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := comp.CompressBlock(data, dst)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "lz4 compress")
	}
	if n == 0 {
		// Incompressible input; CompressBlock signals this with n == 0 and
		// the raw payload is carried instead, prefixed below.
		return append([]byte{0}, data...), nil
	}
	return append([]byte{1}, dst[:n]...), nil
}

func (c *lz4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New(errors.ErrorTypeData, "lz4 payload missing marker byte")
	}
	marker, body := data[0], data[1:]
	if marker == 0 {
		return body, nil
	}
	// Block decompression needs a sized buffer; grow geometrically until the
	// block fits.
	size := len(body) * 4
	if size < 64 {
		size = 64
	}
	for {
		dst := make([]byte, size)
		n, err := lz4.UncompressBlock(body, dst)
		if err == nil {
			return dst[:n], nil
		}
		if size >= 1<<30 {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "lz4 decompress")
		}
		size *= 2
	}
}

type s2Compressor struct{}

func (s2Compressor) Codec() Codec { return CodecS2 }

func (s2Compressor) Compress(data []byte) ([]byte, error) {
	return s2.Encode(nil, data), nil
}

func (s2Compressor) Decompress(data []byte) ([]byte, error) {
	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "s2 decompress")
	}
	return out, nil
}

type zstdCompressor struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCompressor() (*zstdCompressor, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "creating zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "creating zstd decoder")
	}
	return &zstdCompressor{enc: enc, dec: dec}, nil
}

func (c *zstdCompressor) Codec() Codec { return CodecZstd }

func (c *zstdCompressor) Compress(data []byte) ([]byte, error) {
	return c.enc.EncodeAll(data, nil), nil
}

func (c *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "zstd decompress")
	}
	return out, nil
}
