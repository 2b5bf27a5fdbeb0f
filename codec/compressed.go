package codec

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the block compression used by Compressed.
type CompressionType uint8

const (
	// LZ4 is fast block compression.
	LZ4 CompressionType = 1
	// ZSTD trades speed for a better ratio.
	ZSTD CompressionType = 2
)

// String returns the short name used in codec names.
func (t CompressionType) String() string {
	switch t {
	case LZ4:
		return "lz4"
	case ZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(t))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithEncoderConcurrency(1))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1), zstd.WithDecoderMaxMemory(maxBlockSize))
	return dec
}

// Block format: [uncompressed uint32][compressed uint32][data...].
// A compressed size of 0 means the data is stored as is.
const blockHeaderSize = 8

const (
	// maxBlockSize caps the decompressed size accepted from a header.
	maxBlockSize = 64 << 20
	// lz4MaxRatio bounds LZ4 expansion: one byte of match length extension
	// covers at most 255 output bytes.
	lz4MaxRatio = 255
)

// Compressed wraps another codec and compresses its output.
//
// Output is deterministic for identical input, so the byte-exact round trip
// of the inner codec is preserved.
type Compressed struct {
	Inner Codec
	Type  CompressionType
}

// Marshal encodes v with the inner codec and compresses the result.
func (c Compressed) Marshal(v any) ([]byte, error) {
	raw, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	return compressBlock(raw, c.Type)
}

// Unmarshal decompresses data and decodes it with the inner codec.
func (c Compressed) Unmarshal(data []byte, v any) error {
	raw, err := decompressBlock(data, c.Type)
	if err != nil {
		return err
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns "<inner>+<compression>", e.g. "binary+zstd".
func (c Compressed) Name() string {
	return c.inner().Name() + "+" + c.Type.String()
}

func (c Compressed) inner() Codec {
	if c.Inner == nil {
		return Binary{}
	}
	return c.Inner
}

func compressBlock(data []byte, t CompressionType) ([]byte, error) {
	var compressed []byte

	switch t {
	case LZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		compressed = buf[:n]
	case ZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("codec: unknown compression type %d", t)
	}

	// Store uncompressed when the ratio is worse than 0.9.
	stored := compressed
	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		stored = nil
	}

	body := data
	if stored != nil {
		body = stored
	}
	out := make([]byte, blockHeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(out[4:], uint32(len(stored)))
	copy(out[blockHeaderSize:], body)
	return out, nil
}

func decompressBlock(data []byte, t CompressionType) ([]byte, error) {
	if len(data) < blockHeaderSize {
		return nil, fmt.Errorf("%w: block too small for header", ErrCorrupt)
	}
	size := binary.LittleEndian.Uint32(data[0:])
	csize := binary.LittleEndian.Uint32(data[4:])
	body := data[blockHeaderSize:]

	if csize == 0 {
		if uint32(len(body)) != size {
			return nil, fmt.Errorf("%w: stored block is %d bytes, header says %d", ErrCorrupt, len(body), size)
		}
		return body, nil
	}
	if uint32(len(body)) != csize {
		return nil, fmt.Errorf("%w: compressed block is %d bytes, header says %d", ErrCorrupt, len(body), csize)
	}

	if size > maxBlockSize {
		return nil, fmt.Errorf("%w: decompressed size %d exceeds limit %d", ErrCorrupt, size, maxBlockSize)
	}

	switch t {
	case LZ4:
		if uint64(size) > uint64(len(body))*lz4MaxRatio {
			return nil, fmt.Errorf("%w: decompressed size %d impossible for %d compressed bytes", ErrCorrupt, size, len(body))
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(body, out)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(n) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return out, nil
	case ZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		decoded, err := dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if uint32(len(decoded)) != size {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrCorrupt)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("codec: unknown compression type %d", t)
	}
}
