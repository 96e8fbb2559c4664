package tlv

import "errors"

// Every error below is stream-fatal: the first one encountered terminates
// the decode and the partial stream is discarded. Errors raised by a
// registered known-type decoder pass through unchanged.
var (
	ErrMalformedVarInt = errors.New("tlv: malformed varint")
	ErrWrongOrder      = errors.New("tlv: wrong stream order")
	ErrDuplicateItem   = errors.New("tlv: duplicate type id")
	ErrEvenUnknownType = errors.New("tlv: unknown even type id")
	ErrOversizedLength = errors.New("tlv: record length over ceiling")
	ErrTruncatedRecord = errors.New("tlv: truncated record value")
)
