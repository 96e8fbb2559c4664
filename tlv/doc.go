// Package tlv decodes Type-Length-Value record streams into an addressable
// collection of typed records.
//
// Ownership boundary:
// - the single-pass decode state machine and its stream invariants
//   (strict type id ordering, duplicate rejection, even/odd unknown policy)
// - the heterogeneous Stream container produced by a decode
// - the raw-record fallback for unknown odd types
//
// Type and length fields use the bigsize encoding; see package bigsize.
// Framing, transport, and semantic validation of decoded values live above
// this package.
package tlv
