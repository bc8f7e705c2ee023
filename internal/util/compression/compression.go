// Package compression provides the codecs applied to the persisted posts document.
package compression

import (
	"bytes"
	"fmt"
)

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

const (
	None = "none"
	Gzip = "gzip"
	Zstd = "zstd"
)

// NoneCompressor stores data as is.
type NoneCompressor struct{}

func (NoneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (NoneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// ForName returns the compressor registered under name. An empty name means none.
func ForName(name string) (Compressor, error) {
	switch name {
	case "", None:
		return NoneCompressor{}, nil
	case Gzip:
		return GzipCompressor{}, nil
	case Zstd:
		return ZstdCompressor{}, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", name)
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Detect names the codec data was written with, judging by its magic bytes.
// Anything without a known header is reported as None.
func Detect(data []byte) string {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return Zstd
	case bytes.HasPrefix(data, gzipMagic):
		return Gzip
	default:
		return None
	}
}
