package tlv

import (
	"encoding/binary"
	"io"

	"github.com/lnp-works/tlvstream/bigsize"
)

// Minimal write path: enough to produce streams the decoder accepts, for
// round-trip verification and the tlvctl tooling. Callers are responsible
// for emitting records in strictly increasing type id order.

// AppendRecord appends one record (bigsize type, bigsize length, value) to
// buf.
func AppendRecord(buf []byte, id TypeID, value []byte) []byte {
	buf = bigsize.Append(buf, uint64(id))
	buf = bigsize.Append(buf, uint64(len(value)))
	return append(buf, value...)
}

// EncodeRecord writes one record to w.
func EncodeRecord(w io.Writer, id TypeID, value []byte) error {
	_, err := w.Write(AppendRecord(nil, id, value))
	return err
}

// AppendUint16 appends a 2-byte big-endian value.
func AppendUint16(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

// AppendUint32 appends a 4-byte big-endian value.
func AppendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

// AppendUint64 appends an 8-byte big-endian value.
func AppendUint64(buf []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(buf, v)
}
