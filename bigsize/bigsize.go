// Package bigsize implements the BigSize variable-length unsigned integer
// encoding used for TLV type and length fields.
//
// Ownership boundary:
// - single-integer read/write primitives
// - canonical (minimal) encoding enforcement
//
// A value encodes to 1, 3, 5, or 9 bytes: values below 0xfd as a single
// byte, then discriminants 0xfd, 0xfe, 0xff followed by a big-endian
// uint16, uint32, or uint64. Only the shortest form for a value is valid.
package bigsize

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	ErrTruncated    = errors.New("bigsize: truncated integer")
	ErrNotCanonical = errors.New("bigsize: non-minimal encoding")
)

// Read decodes one canonically encoded integer from r.
//
// Read returns io.EOF only when zero bytes were available before the first
// byte of the integer; callers use that to detect a clean stream boundary.
// Running out of bytes after the discriminant is ErrTruncated, and an
// encoding longer than the value requires is ErrNotCanonical.
func Read(r io.Reader) (uint64, error) {
	var head [1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		// ReadFull yields io.EOF only when no bytes were read at all.
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, err
	}

	var buf [8]byte
	switch head[0] {
	case 0xff:
		if _, err := io.ReadFull(r, buf[:8]); err != nil {
			return 0, ErrTruncated
		}
		v := binary.BigEndian.Uint64(buf[:8])
		if v <= 0xffffffff {
			return 0, ErrNotCanonical
		}
		return v, nil
	case 0xfe:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return 0, ErrTruncated
		}
		v := uint64(binary.BigEndian.Uint32(buf[:4]))
		if v <= 0xffff {
			return 0, ErrNotCanonical
		}
		return v, nil
	case 0xfd:
		if _, err := io.ReadFull(r, buf[:2]); err != nil {
			return 0, ErrTruncated
		}
		v := uint64(binary.BigEndian.Uint16(buf[:2]))
		if v < 0xfd {
			return 0, ErrNotCanonical
		}
		return v, nil
	default:
		return uint64(head[0]), nil
	}
}

// Write encodes v canonically to w.
func Write(w io.Writer, v uint64) error {
	_, err := w.Write(Append(nil, v))
	return err
}

// Append appends the canonical encoding of v to buf.
func Append(buf []byte, v uint64) []byte {
	switch {
	case v < 0xfd:
		return append(buf, byte(v))
	case v <= 0xffff:
		return append(buf, 0xfd, byte(v>>8), byte(v))
	case v <= 0xffffffff:
		return append(buf, 0xfe, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		buf = append(buf, 0xff)
		return binary.BigEndian.AppendUint64(buf, v)
	}
}

// Len reports the encoded length of v in bytes.
func Len(v uint64) int {
	switch {
	case v < 0xfd:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}
