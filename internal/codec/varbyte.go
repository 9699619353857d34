package codec

import (
	"fmt"
	"math"

	pkgerrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

// varByteCodec delta-encodes the sequence (first value absolute, the rest as
// gaps against the previous value) and writes each gap as a variable-byte
// code: 7 data bits per byte, high bit set on every byte except the last.
type varByteCodec struct{}

func (varByteCodec) Encode(seq []uint32) ([]byte, error) {
	if len(seq) == 0 {
		return nil, nil
	}
	out := make([]byte, 0, len(seq))
	prev := uint32(0)
	for i, n := range seq {
		gap := n
		if i > 0 {
			if n < prev {
				return nil, fmt.Errorf("%w: gap coding requires ascending input, got %d after %d", pkgerrors.ErrEncoding, n, prev)
			}
			gap = n - prev
		}
		out = appendUvarint7(out, gap)
		prev = n
	}
	return out, nil
}

func (varByteCodec) Decode(data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return []uint32{}, nil
	}
	out := make([]uint32, 0, len(data))
	var cum uint32
	for off := 0; off < len(data); {
		gap, n, err := uvarint7(data[off:])
		if err != nil {
			return nil, err
		}
		off += n
		cum += gap
		out = append(out, cum)
	}
	return out, nil
}

// appendUvarint7 writes n in the big-endian 7-bit code: all bytes carry the
// continuation bit except the final one.
func appendUvarint7(dst []byte, n uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(n & 0x7f)
	n >>= 7
	for n > 0 {
		i--
		tmp[i] = byte(n&0x7f) | 0x80
		n >>= 7
	}
	return append(dst, tmp[i:]...)
}

// uvarint7 reads one 7-bit coded integer, returning the value and the number
// of bytes consumed.
func uvarint7(data []byte) (uint32, int, error) {
	var v uint32
	for i, b := range data {
		if i == 5 || v > math.MaxUint32>>7 {
			return 0, 0, fmt.Errorf("%w: variable-byte value exceeds 32 bits", pkgerrors.ErrCorruptEncoding)
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: continuation bit set on final byte", pkgerrors.ErrCorruptEncoding)
}
