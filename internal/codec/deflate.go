package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	pkgerrors "github.com/mihirdhamankar/searchlite/pkg/errors"
)

// deflateCodec runs the variable-byte gap pre-encoding through a DEFLATE
// (zlib) compressor. It trades CPU for the smallest on-disk size and is
// expected to have the highest decode latency of the three schemes.
type deflateCodec struct{}

func (deflateCodec) Encode(seq []uint32) ([]byte, error) {
	if len(seq) == 0 {
		return nil, nil
	}
	pre, err := varByteCodec{}.Encode(seq)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(pre); err != nil {
		return nil, fmt.Errorf("compressing record: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing record: %w", err)
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decode(data []byte) ([]uint32, error) {
	if len(data) == 0 {
		return []uint32{}, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrCorruptEncoding, err)
	}
	defer zr.Close()
	pre, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrCorruptEncoding, err)
	}
	return varByteCodec{}.Decode(pre)
}
