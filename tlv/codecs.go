package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/lnp-works/tlvstream/bigsize"
)

// Ready-made DecodeFuncs for fixed-width big-endian value encodings. Each
// reads the record's bigsize length, requires it to match the encoding
// exactly, then reads the value bytes. A length mismatch fails the whole
// stream, per the known-type contract.

// DecodeUint16 decodes a 2-byte big-endian value as uint16.
func DecodeUint16(r io.Reader) (any, error) {
	buf, err := readExact(r, 2)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint16(buf), nil
}

// DecodeUint32 decodes a 4-byte big-endian value as uint32.
func DecodeUint32(r io.Reader) (any, error) {
	buf, err := readExact(r, 4)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// DecodeUint64 decodes an 8-byte big-endian value as uint64.
func DecodeUint64(r io.Reader) (any, error) {
	buf, err := readExact(r, 8)
	if err != nil {
		return nil, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// DecodeBytes decodes a variable-length value as a []byte copy, subject to
// the MaxRecordLen ceiling.
func DecodeBytes(r io.Reader) (any, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %w", ErrTruncatedRecord, length, err)
	}
	return buf, nil
}

// DecodeFuncFor maps a schema kind name to its decoder.
func DecodeFuncFor(kind string) (DecodeFunc, bool) {
	switch kind {
	case "u16":
		return DecodeUint16, true
	case "u32":
		return DecodeUint32, true
	case "u64":
		return DecodeUint64, true
	case "bytes":
		return DecodeBytes, true
	default:
		return nil, false
	}
}

func readLength(r io.Reader) (uint64, error) {
	length, err := bigsize.Read(r)
	if errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w: source ended before length", ErrMalformedVarInt)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: reading length: %w", ErrMalformedVarInt, err)
	}
	if length > MaxRecordLen {
		return 0, fmt.Errorf("%w: %d > %d", ErrOversizedLength, length, MaxRecordLen)
	}
	return length, nil
}

func readExact(r io.Reader, want uint64) ([]byte, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if length != want {
		return nil, fmt.Errorf("tlv: fixed encoding wants length %d, stream declares %d", want, length)
	}
	buf := make([]byte, want)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %w", ErrTruncatedRecord, want, err)
	}
	return buf, nil
}
