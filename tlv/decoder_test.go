package tlv

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/lnp-works/tlvstream/bigsize"
)

func testDecoder() *Decoder {
	reg := NewRegistry().
		Register(2, DecodeUint64).
		Register(4, DecodeUint32)
	return NewDecoder(reg)
}

func TestDecodeEmptySourceIsEmptyStream(t *testing.T) {
	stream, err := testDecoder().Decode(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("decode empty source: %v", err)
	}
	if stream.Len() != 0 {
		t.Fatalf("expected empty stream, got %d records", stream.Len())
	}
}

func TestDecodeKnownAndUnknownOddRecords(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 2, AppendUint64(nil, 5000))
	buf = AppendRecord(buf, 4, AppendUint32(nil, 7))
	raw := []byte{0xca, 0xfe, 0xba, 0xbe}
	buf = AppendRecord(buf, 9, raw) // unknown odd, preserved as RawRecord

	stream, err := testDecoder().Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stream.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", stream.Len())
	}
	if v, ok := Get[uint64](stream, 2); !ok || v != 5000 {
		t.Fatalf("record 2: got %v ok=%v", v, ok)
	}
	if v, ok := Get[uint32](stream, 4); !ok || v != 7 {
		t.Fatalf("record 4: got %v ok=%v", v, ok)
	}
	rec, ok := Get[RawRecord](stream, 9)
	if !ok || !rec.Equal(raw) {
		t.Fatalf("record 9 not preserved: got % x ok=%v", []byte(rec), ok)
	}
	ids := stream.TypeIDs()
	if ids[0] != 2 || ids[1] != 4 || ids[2] != 9 {
		t.Fatalf("unexpected id order: %v", ids)
	}
}

func TestDecodeWrongOrderIsDeterministic(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 9, []byte{0x01})
	buf = AppendRecord(buf, 3, []byte{0x02}) // out of order
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrWrongOrder) {
		t.Fatalf("expected ErrWrongOrder, got %v", err)
	}
}

func TestDecodeFirstRecordAnyTypeID(t *testing.T) {
	// The ordering constraint does not apply to the first record.
	var buf []byte
	buf = AppendRecord(buf, 1, []byte{0xaa})
	stream, err := testDecoder().Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := Get[RawRecord](stream, 1); !ok {
		t.Fatalf("expected record under type 1")
	}
}

func TestDecodeDuplicateTypeIDIsDeterministic(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 5, []byte{0x01})
	buf = AppendRecord(buf, 5, []byte{0x02})
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}
}

func TestDecodeDuplicateKnownTypeIsDuplicateNotDecoderError(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 2, AppendUint64(nil, 1))
	buf = AppendRecord(buf, 2, AppendUint64(nil, 2))
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrDuplicateItem) {
		t.Fatalf("expected ErrDuplicateItem, got %v", err)
	}
}

func TestDecodeUnknownEvenTypeRejected(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 6, []byte{0x01, 0x02})
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrEvenUnknownType) {
		t.Fatalf("expected ErrEvenUnknownType, got %v", err)
	}

	// The identical payload one type id up is odd, therefore preserved.
	buf = AppendRecord(nil, 7, []byte{0x01, 0x02})
	stream, err := testDecoder().Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode odd neighbor: %v", err)
	}
	rec, ok := Get[RawRecord](stream, 7)
	if !ok || !rec.Equal([]byte{0x01, 0x02}) {
		t.Fatalf("odd record bytes not preserved: % x", []byte(rec))
	}
}

func TestDecodeOversizedLengthFailsBeforeRead(t *testing.T) {
	// Declared length above the ceiling with no value bytes at all: the
	// decoder must fail on the declaration, never on the missing bytes.
	buf := bigsize.Append(nil, 9) // unknown odd type
	buf = bigsize.Append(buf, MaxRecordLen+1)
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrOversizedLength) {
		t.Fatalf("expected ErrOversizedLength, got %v", err)
	}
}

func TestDecodeTruncatedRecordIsDeterministic(t *testing.T) {
	buf := bigsize.Append(nil, 9)
	buf = bigsize.Append(buf, 5)
	buf = append(buf, 0x01, 0x02) // three bytes short
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrTruncatedRecord) {
		t.Fatalf("expected ErrTruncatedRecord, got %v", err)
	}
}

func TestDecodeMalformedTypeVarInt(t *testing.T) {
	// Non-minimal type encoding.
	buf := []byte{0xfd, 0x00, 0x07}
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrMalformedVarInt) {
		t.Fatalf("expected ErrMalformedVarInt, got %v", err)
	}
	if !errors.Is(err, bigsize.ErrNotCanonical) {
		t.Fatalf("expected wrapped bigsize error, got %v", err)
	}
}

func TestDecodeSourceEndingMidTypeIsMalformed(t *testing.T) {
	buf := []byte{0xfd, 0x01} // discriminant promises two more bytes
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrMalformedVarInt) {
		t.Fatalf("expected ErrMalformedVarInt, got %v", err)
	}
}

func TestDecodeSourceEndingAfterTypeIsMalformed(t *testing.T) {
	buf := bigsize.Append(nil, 9) // type with no length field
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrMalformedVarInt) {
		t.Fatalf("expected ErrMalformedVarInt, got %v", err)
	}
}

func TestDecodeKnownDecoderErrorPassesThrough(t *testing.T) {
	sentinel := errors.New("schema: amount out of range")
	reg := NewRegistry().Register(2, func(r io.Reader) (any, error) {
		return nil, sentinel
	})
	var buf []byte
	buf = AppendRecord(buf, 2, AppendUint64(nil, 1))
	_, err := NewDecoder(reg).Decode(bytes.NewReader(buf))
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected pass-through decoder error, got %v", err)
	}
}

func TestDecodeKnownFixedLengthMismatch(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 4, []byte{0x01, 0x02}) // u32 decoder wants 4 bytes
	_, err := testDecoder().Decode(bytes.NewReader(buf))
	if err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestDecodeDeterministic(t *testing.T) {
	var buf []byte
	buf = AppendRecord(buf, 2, AppendUint64(nil, 123456))
	buf = AppendRecord(buf, 11, []byte{0x0a, 0x0b})
	d := testDecoder()

	first, err := d.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	second, err := d.Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	firstIDs, secondIDs := first.TypeIDs(), second.TypeIDs()
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("id count mismatch: %v vs %v", firstIDs, secondIDs)
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("id mismatch at %d: %v vs %v", i, firstIDs, secondIDs)
		}
	}
	a, _ := Get[uint64](first, 2)
	b, _ := Get[uint64](second, 2)
	if a != b {
		t.Fatalf("value mismatch: %d vs %d", a, b)
	}
}

func TestDecodeCustomRawFallback(t *testing.T) {
	reg := NewRegistry().SetRawFallback(func(r io.Reader) (any, error) {
		v, err := DecodeRaw(r)
		if err != nil {
			return nil, err
		}
		return len(v.(RawRecord)), nil
	})
	var buf []byte
	buf = AppendRecord(buf, 3, []byte{0x01, 0x02, 0x03})
	stream, err := NewDecoder(reg).Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n, ok := Get[int](stream, 3); !ok || n != 3 {
		t.Fatalf("expected fallback value 3, got %v ok=%v", n, ok)
	}
}

func TestDecoderSnapshotsRegistry(t *testing.T) {
	reg := NewRegistry().Register(2, DecodeUint64)
	d := NewDecoder(reg)
	reg.Register(8, DecodeUint16) // after snapshot; must not be visible

	var buf []byte
	buf = AppendRecord(buf, 8, AppendUint16(nil, 3))
	_, err := d.Decode(bytes.NewReader(buf))
	if !errors.Is(err, ErrEvenUnknownType) {
		t.Fatalf("expected ErrEvenUnknownType for late registration, got %v", err)
	}
}

func TestEncodeDecodeRoundTripLargeTypeAndValue(t *testing.T) {
	value := bytes.Repeat([]byte{0x5a}, 300) // forces a 3-byte length
	var buf []byte
	buf = AppendRecord(buf, 2, AppendUint64(nil, 42))
	buf = AppendRecord(buf, 0x10001, value) // odd type above one byte

	stream, err := testDecoder().Decode(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	rec, ok := Get[RawRecord](stream, 0x10001)
	if !ok || !rec.Equal(value) {
		t.Fatalf("large raw record not preserved")
	}
}
