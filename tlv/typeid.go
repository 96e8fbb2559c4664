package tlv

import "bytes"

// TypeID is the type field of one TLV record. Ordering and equality are
// numeric.
type TypeID uint64

// IsEven reports even parity. Unknown even types are mandatory to
// understand and make a stream unparseable.
func (t TypeID) IsEven() bool { return t%2 == 0 }

// IsOdd reports odd parity. Unknown odd types are safely ignorable.
func (t TypeID) IsOdd() bool { return !t.IsEven() }

// RawRecord is the preserved, uninterpreted payload of a record whose type
// is unrecognized but permitted.
type RawRecord []byte

// Equal compares raw records by content.
func (r RawRecord) Equal(other RawRecord) bool {
	return bytes.Equal(r, other)
}
