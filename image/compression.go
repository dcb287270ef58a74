package image

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the compression algorithm of a column block.
type Compression uint8

const (
	// CompressionNone stores blocks as is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD (better ratio).
	CompressionZSTD Compression = 2
)

// String returns the string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecoderMaxMemory(DefaultMaxBlockSize))
}

var errIncompressible = errors.New("incompressible")

// compress returns the compressed form of data. Blocks that do not shrink
// below 90% are reported as errIncompressible and stored raw.
func compress(data []byte, c Compression) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch c {
	case CompressionNone:
		return nil, errIncompressible
	case CompressionLZ4:
		out = make([]byte, lz4.CompressBlockBound(len(data)))
		var n int
		n, err = lz4.CompressBlock(data, out, nil)
		out = out[:n]
	case CompressionZSTD:
		var enc *zstd.Encoder
		enc, err = getZstdEncoder()
		if err == nil {
			out = enc.EncodeAll(data, nil)
			zstdEncoderPool.Put(enc)
		}
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}
	if err != nil {
		return nil, err
	}
	if len(out) == 0 || float64(len(out)) > float64(len(data))*0.9 {
		return nil, errIncompressible
	}
	return out, nil
}

// decompress expands stored into a buffer of raw bytes.
func decompress(stored []byte, c Compression, raw int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(stored) != raw {
			return nil, fmt.Errorf("stored %d bytes, want %d", len(stored), raw)
		}
		return stored, nil
	case CompressionLZ4:
		out := make([]byte, raw)
		n, err := lz4.UncompressBlock(stored, out)
		if err != nil {
			return nil, err
		}
		if n != raw {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	case CompressionZSTD:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(stored, make([]byte, 0, raw))
		if err != nil {
			return nil, err
		}
		if len(out) != raw {
			return nil, errors.New("decompressed size mismatch")
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %s", c)
	}
}
