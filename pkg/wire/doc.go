// Package wire implements the byte-level building blocks of the protostruct
// binary format. It has no schema awareness; higher layers decide which wire
// type each field uses.
//
// # Wire Format
//
// The format follows Protocol Buffers conventions. Every encoded field is a
// tag followed by a value:
//
//	tag   = varint((fieldNumber << 3) | wireType)
//	value = varint | fixed64 | (varint length + raw bytes)
//
// Wire types:
//   - 0 (varint): integers, booleans, enum values
//   - 1 (fixed64): float64, little-endian IEEE 754 bits
//   - 2 (bytes): strings, byte slices, nested messages, map entries
//
// Varints are little-endian base-128: each byte carries 7 value bits and a
// continuation flag in the high bit. A 64-bit value occupies at most 10
// bytes; decoding rejects longer runs and streams that end mid-varint.
//
// # Compatibility Boundary
//
// The format is byte-compatible with Protocol Buffers for the three wire
// types above and for tag packing, with two documented deviations:
//
//   - Negative integers are encoded as the two's-complement varint of the
//     64-bit value (protobuf's plain int64), never zigzag (sint64).
//   - Repeated scalar fields are always unpacked: one tag per element.
//
// Wire type 5 (fixed32) is never produced; integers always varint-encode and
// floats always use the 64-bit fixed encoding, regardless of value magnitude.
package wire
