package codec

import (
	"encoding/binary"
	"fmt"

	pkgerrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

// rawCodec stores every integer at a fixed 4-byte big-endian width. It is
// the identity codec, kept as the size and speed baseline.
type rawCodec struct{}

func (rawCodec) Encode(seq []uint32) ([]byte, error) {
	if len(seq) == 0 {
		return nil, nil
	}
	out := make([]byte, 4*len(seq))
	for i, n := range seq {
		binary.BigEndian.PutUint32(out[4*i:], n)
	}
	return out, nil
}

func (rawCodec) Decode(data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return []uint32{}, nil
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: raw record length %d is not a multiple of 4", pkgerrors.ErrCorruptEncoding, len(data))
	}
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return out, nil
}
