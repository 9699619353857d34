// Package codec implements the interchangeable posting-list integer codecs:
// fixed-width (raw), variable-byte gap coding, and DEFLATE-compressed gap
// coding. All three satisfy decode(encode(x)) == x for every valid sequence,
// including the empty one.
package codec

import (
	"fmt"
	"strings"
)

// Scheme identifies a compression scheme. It is part of the index identity
// tuple and is recorded alongside persisted data.
type Scheme uint8

const (
	// SchemeRaw stores integers at a fixed 4-byte width. The baseline.
	SchemeRaw Scheme = iota
	// SchemeVarByte delta-encodes the sequence and writes each gap as a
	// 7-bits-per-byte variable-length code.
	SchemeVarByte
	// SchemeDeflate applies DEFLATE on top of the variable-byte gap
	// pre-encoding. Smallest output, slowest decode.
	SchemeDeflate
)

func (s Scheme) String() string {
	switch s {
	case SchemeRaw:
		return "raw"
	case SchemeVarByte:
		return "varbyte"
	case SchemeDeflate:
		return "deflate"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// ParseScheme converts a config string into a Scheme.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToLower(s) {
	case "raw", "none":
		return SchemeRaw, nil
	case "varbyte", "code":
		return SchemeVarByte, nil
	case "deflate", "zlib", "library":
		return SchemeDeflate, nil
	default:
		return 0, fmt.Errorf("unknown compression scheme %q", s)
	}
}

// Codec encodes and decodes sequences of non-negative integers. Sequences
// handed to gap-coding codecs must be sorted ascending; the index layer
// guarantees this by only encoding document-id and position sequences.
type Codec interface {
	Encode(seq []uint32) ([]byte, error)
	Decode(data []byte) ([]uint32, error)
}

// New returns the codec for a scheme.
func New(s Scheme) Codec {
	switch s {
	case SchemeVarByte:
		return varByteCodec{}
	case SchemeDeflate:
		return deflateCodec{}
	default:
		return rawCodec{}
	}
}
