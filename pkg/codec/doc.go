// Package codec serializes Go record types to a compact, Protocol-Buffers
// style binary format and reconstructs them losslessly, with no schema
// compiler step. Field numbers are derived from struct field declaration
// order, so two builds of the same type always agree on the wire.
//
// # Usage
//
// Basic round trip:
//
//	type User struct {
//	    Name string
//	    Age  int
//	}
//
//	c := codec.New()
//
//	data, err := c.Marshal(User{Name: "Alice", Age: 30})
//	if err != nil {
//	    return err
//	}
//
//	var u User
//	if err := c.Unmarshal(data, &u); err != nil {
//	    return err
//	}
//
// # Field Mapping
//
// Struct fields map to wire fields positionally: the first exported field is
// field number 1, the second is 2, and so on. Reordering fields is a wire
// compatibility break; appending new fields is safe.
//
//   - integers (any width, signed or unsigned): varint; negative values use
//     the two's-complement 64-bit form, not zigzag
//   - bool: varint 0 or 1
//   - float64: fixed64 (float32 is rejected at registration)
//   - string, []byte: length-delimited
//   - defined integer types: enums, varint of the backing value
//   - nested structs: length-delimited submessages, any depth; cyclic type
//     graphs are rejected when the descriptor is built
//   - slices: repeated fields, one tag+value per element, unpacked
//   - maps (string or integer keys): repeated {1: key, 2: value} entry
//     submessages, emitted in sorted key order for deterministic output
//   - pointers: optional fields; nil encodes as total omission
//
// # Decode Semantics
//
// Decoding is a single pass over the buffer. Units may arrive in any order.
// Singular fields are last-write-wins, repeated fields append in stream
// order, duplicate map keys overwrite. Unknown field numbers are skipped
// structurally and discarded. A truncated buffer or a wire type that
// contradicts the schema surfaces a *wire.FormatError; there is no partial
// message acceptance.
//
// No field is required at the wire level. Types that implement Validator
// have domain constraints applied after decode completes; the codec
// propagates validation errors unchanged.
//
// # Thread Safety
//
// A Codec is safe for concurrent use. Descriptors are built once per type
// under a build-once guard and are immutable afterward; encode and decode
// calls are stateless and reentrant.
package codec
