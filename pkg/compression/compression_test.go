package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllCodecs(t *testing.T) {
	payload := bytes.Repeat([]byte("columnar block payload payload payload "), 64)

	for _, codec := range []Codec{CodecNone, CodecLZ4, CodecS2, CodecZstd} {
		t.Run(codec.String(), func(t *testing.T) {
			c, err := New(codec)
			require.NoError(t, err)
			assert.Equal(t, codec, c.Codec())

			compressed, err := c.Compress(payload)
			require.NoError(t, err)

			out, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, payload, out)

			if codec != CodecNone {
				assert.Less(t, len(compressed), len(payload))
			}
		})
	}
}

func TestIncompressibleInput(t *testing.T) {
	// Short high-entropy payloads do not shrink; they must still round-trip.
	payload := []byte{0x1f, 0xa7, 0x33, 0x90, 0x04, 0xde, 0x5b, 0x61}

	for _, codec := range []Codec{CodecLZ4, CodecS2, CodecZstd} {
		c, err := New(codec)
		require.NoError(t, err)

		compressed, err := c.Compress(payload)
		require.NoError(t, err)
		out, err := c.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, payload, out, codec.String())
	}
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		in   string
		want Codec
		ok   bool
	}{
		{"", CodecNone, true},
		{"none", CodecNone, true},
		{"lz4", CodecLZ4, true},
		{"s2", CodecS2, true},
		{"zstd", CodecZstd, true},
		{"gzip", CodecNone, false},
	}
	for _, tt := range tests {
		got, err := ParseCodec(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestNewRejectsUnknownCodec(t *testing.T) {
	_, err := New(Codec(99))
	assert.Error(t, err)
}
