package tlv

// Stream is an ordered mapping from TypeID to a type-erased decoded value.
// A successful Decode produces one Stream; its values are shared handles and
// must be treated as read-only once decode completes. Stream itself is not
// safe for concurrent mutation.
//
// Stream does not prevent duplicate insertion; uniqueness within one decoded
// stream is enforced by the decode loop.
type Stream struct {
	values map[TypeID]any
	order  []TypeID
}

// NewStream returns an empty stream.
func NewStream() *Stream {
	return &Stream{values: make(map[TypeID]any)}
}

// Get returns the value stored under id if it is present and its runtime
// type is T. A present value of another type yields the zero value and
// false, never an error; callers know from the type id which kind to ask
// for.
func Get[T any](s *Stream, id TypeID) (T, bool) {
	var zero T
	v, ok := s.values[id]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Insert stores value under id and reports whether id was absent
// beforehand. The value is stored either way.
func (s *Stream) Insert(id TypeID, value any) bool {
	_, existed := s.values[id]
	s.values[id] = value
	if !existed {
		s.order = append(s.order, id)
	}
	return !existed
}

// ContainsKey reports whether id holds a value.
func (s *Stream) ContainsKey(id TypeID) bool {
	_, ok := s.values[id]
	return ok
}

// Len reports the number of records.
func (s *Stream) Len() int { return len(s.order) }

// TypeIDs returns the type ids in insertion order. After a decode this is
// ascending.
func (s *Stream) TypeIDs() []TypeID {
	out := make([]TypeID, len(s.order))
	copy(out, s.order)
	return out
}

// Entry returns a handle to the slot for id, present or absent, for
// read-modify-insert patterns beyond Get/Insert.
func (s *Stream) Entry(id TypeID) *Entry {
	return &Entry{stream: s, id: id}
}

// Entry is a mutable handle to one stream slot.
type Entry struct {
	stream *Stream
	id     TypeID
}

// Get returns the current value and whether the slot is occupied.
func (e *Entry) Get() (any, bool) {
	v, ok := e.stream.values[e.id]
	return v, ok
}

// Set stores value in the slot, occupied or not.
func (e *Entry) Set(value any) {
	e.stream.Insert(e.id, value)
}

// OrInsert stores value only if the slot is vacant and returns the value
// that ends up in the slot.
func (e *Entry) OrInsert(value any) any {
	if v, ok := e.stream.values[e.id]; ok {
		return v
	}
	e.stream.Insert(e.id, value)
	return value
}
