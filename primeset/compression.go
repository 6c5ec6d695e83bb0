package primeset

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression defines the algorithm applied to the serialized bitmap.
type Compression uint8

const (
	// CompressionNone stores the bitmap as-is.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD Compression = 2
)

// ZSTD encoder/decoder pools for efficiency
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) {
	zstdEncoderPool.Put(enc)
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

// Block format: [Compression uint8][UncompressedSize uint32][CompressedSize uint32][Data...]
// CompressedSize == 0 means the data is stored uncompressed.
const blockHeaderSize = 9

// writeBlock compresses data and writes it with its header. Falls back to
// raw storage when compression does not help (ratio > 0.9).
func writeBlock(w io.Writer, data []byte, compression Compression) (int64, error) {
	if len(data) > math.MaxUint32 {
		return 0, ErrTooLarge
	}

	var compressed []byte
	var err error

	switch compression {
	case CompressionLZ4:
		compressed, err = compressLZ4(data)
	case CompressionZSTD:
		compressed, err = compressZSTD(data)
	case CompressionNone:
	default:
		return 0, ErrFormat
	}
	if err != nil {
		return 0, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		compressed = nil // store uncompressed
	}

	var header [blockHeaderSize]byte
	header[0] = byte(compression)
	binary.LittleEndian.PutUint32(header[1:], uint32(len(data)))
	binary.LittleEndian.PutUint32(header[5:], uint32(len(compressed)))

	n, err := w.Write(header[:])
	written := int64(n)
	if err != nil {
		return written, err
	}

	payload := compressed
	if payload == nil {
		payload = data
	}
	n, err = w.Write(payload)
	written += int64(n)
	return written, err
}

// readBlock reads one block and returns the uncompressed data.
func readBlock(r io.Reader) ([]byte, int64, error) {
	var header [blockHeaderSize]byte
	n, err := io.ReadFull(r, header[:])
	read := int64(n)
	if err != nil {
		return nil, read, err
	}

	compression := Compression(header[0])
	uncompressedSize := binary.LittleEndian.Uint32(header[1:])
	compressedSize := binary.LittleEndian.Uint32(header[5:])

	if compressedSize == 0 {
		data := make([]byte, uncompressedSize)
		n, err := io.ReadFull(r, data)
		read += int64(n)
		if err != nil {
			return nil, read, err
		}
		return data, read, nil
	}

	compressed := make([]byte, compressedSize)
	n, err = io.ReadFull(r, compressed)
	read += int64(n)
	if err != nil {
		return nil, read, err
	}

	result := make([]byte, uncompressedSize)
	switch compression {
	case CompressionLZ4:
		m, err := lz4.UncompressBlock(compressed, result)
		if err != nil {
			return nil, read, err
		}
		if uint32(m) != uncompressedSize {
			return nil, read, errors.New("primeset: decompressed size mismatch")
		}
		return result, read, nil

	case CompressionZSTD:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)

		decoded, err := dec.DecodeAll(compressed, result[:0])
		if err != nil {
			return nil, read, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, read, errors.New("primeset: decompressed size mismatch")
		}
		return decoded, read, nil

	default:
		return nil, read, ErrFormat
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func compressZSTD(data []byte) ([]byte, error) {
	enc := getZstdEncoder()
	defer putZstdEncoder(enc)

	return enc.EncodeAll(data, nil), nil
}
