package tlv

import (
	"errors"
	"fmt"
	"io"

	"github.com/lnp-works/tlvstream/bigsize"
)

// MaxRecordLen caps the declared value length of a single raw record. It
// matches the peer message size ceiling of the governing protocol, so a
// forged length field can never force a larger allocation than one
// legitimate message.
const MaxRecordLen = 65535

// DecodeFunc reads one record value from r, the source positioned just
// after the record's type field. Implementations read their own length
// field and exactly the bytes it declares.
type DecodeFunc func(r io.Reader) (any, error)

// Registry collects known-type decoders before a Decoder is built. It is a
// builder: populate it, hand it to NewDecoder, and do not mutate it
// concurrently with that call. The Decoder snapshots it, so later mutation
// never affects existing decoders.
type Registry struct {
	known map[TypeID]DecodeFunc
	raw   DecodeFunc
}

// NewRegistry returns an empty registry whose raw fallback preserves
// unknown odd records as RawRecord values.
func NewRegistry() *Registry {
	return &Registry{known: make(map[TypeID]DecodeFunc), raw: DecodeRaw}
}

// Register binds fn as the decoder for id. Registering the same id again
// replaces the previous binding. Returns the registry for chaining.
func (r *Registry) Register(id TypeID, fn DecodeFunc) *Registry {
	r.known[id] = fn
	return r
}

// SetRawFallback replaces the decoder applied to unknown odd types.
func (r *Registry) SetRawFallback(fn DecodeFunc) *Registry {
	r.raw = fn
	return r
}

// Decoder drives the single-pass decode loop. It is immutable after
// construction and safe for concurrent Decode calls; all loop state is
// local to one call.
type Decoder struct {
	known map[TypeID]DecodeFunc
	raw   DecodeFunc
}

// NewDecoder snapshots reg into a reusable decoder.
func NewDecoder(reg *Registry) *Decoder {
	known := make(map[TypeID]DecodeFunc, len(reg.known))
	for id, fn := range reg.known {
		known[id] = fn
	}
	raw := reg.raw
	if raw == nil {
		raw = DecodeRaw
	}
	return &Decoder{known: known, raw: raw}
}

// Decode reads one complete TLV stream from r until a clean end of source
// and returns the accumulated stream. The first invariant violation or
// decode failure terminates the call; no partial stream is returned.
//
// Stream invariants, checked per record before dispatch:
// type ids strictly increasing (first record unconstrained), no type id
// repeated, unknown even type ids rejected.
func (d *Decoder) Decode(r io.Reader) (*Stream, error) {
	stream := NewStream()
	var prev TypeID
	started := false

	for {
		raw, err := bigsize.Read(r)
		if errors.Is(err, io.EOF) {
			// Zero bytes before a type field is the one clean way for
			// a stream to end.
			return stream, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: reading type: %w", ErrMalformedVarInt, err)
		}
		id := TypeID(raw)

		if started && id < prev {
			return nil, fmt.Errorf("%w: type %d after %d", ErrWrongOrder, id, prev)
		}
		if stream.ContainsKey(id) {
			return nil, fmt.Errorf("%w: type %d", ErrDuplicateItem, id)
		}

		var value any
		if fn, ok := d.known[id]; ok {
			value, err = fn(r)
			if err != nil {
				// Known-type decoder failures are reported as-is.
				return nil, err
			}
		} else if id.IsEven() {
			return nil, fmt.Errorf("%w: type %d", ErrEvenUnknownType, id)
		} else {
			value, err = d.raw(r)
			if err != nil {
				return nil, err
			}
		}

		stream.Insert(id, value)
		prev = id
		started = true
	}
}

// DecodeRaw is the default fallback for unknown odd types: it reads a
// bigsize length and exactly that many value bytes, returning them as a
// RawRecord. The length is checked against MaxRecordLen before any buffer
// is allocated.
func DecodeRaw(r io.Reader) (any, error) {
	length, err := bigsize.Read(r)
	if errors.Is(err, io.EOF) {
		// A source that ends between a type and its length is corrupt,
		// not a clean boundary.
		return nil, fmt.Errorf("%w: source ended before length", ErrMalformedVarInt)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading length: %w", ErrMalformedVarInt, err)
	}
	if length > MaxRecordLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrOversizedLength, length, MaxRecordLen)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: want %d bytes: %w", ErrTruncatedRecord, length, err)
	}
	return RawRecord(buf), nil
}
