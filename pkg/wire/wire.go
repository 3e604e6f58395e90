package wire

// Type identifies the wire category of an encoded field.
type Type byte

const (
	TypeVarint  Type = 0 // integers, booleans, enums
	TypeFixed64 Type = 1 // 64-bit floats
	TypeBytes   Type = 2 // strings, bytes, nested messages, map entries
)

// MaxVarintLen is the maximum number of bytes a 64-bit varint may occupy.
const MaxVarintLen = 10

// Valid reports whether t is a wire type this codec produces or accepts.
// Fixed32 (wire type 5) is deliberately unsupported: integers are always
// varint-encoded and floats always use the 64-bit fixed encoding.
func (t Type) Valid() bool {
	return t == TypeVarint || t == TypeFixed64 || t == TypeBytes
}

func (t Type) String() string {
	switch t {
	case TypeVarint:
		return "varint"
	case TypeFixed64:
		return "fixed64"
	case TypeBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// AppendVarint appends v in little-endian base-128 groups, high bit set on
// every byte except the last.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// AppendTag appends the packed (fieldNumber << 3 | wireType) tag as a varint.
func AppendTag(buf []byte, number int32, wt Type) []byte {
	return AppendVarint(buf, uint64(number)<<3|uint64(wt))
}

// AppendFixed64 appends v as 8 little-endian bytes.
func AppendFixed64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// AppendBytes appends a varint length prefix followed by the raw payload.
func AppendBytes(buf, payload []byte) []byte {
	buf = AppendVarint(buf, uint64(len(payload)))
	return append(buf, payload...)
}

// ConsumeVarint reads a varint from the front of buf and returns the value
// and the number of bytes consumed. The stream is rejected if it ends before
// a terminating byte or runs past MaxVarintLen continuation bytes.
func ConsumeVarint(buf []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(buf); i++ {
		if i >= MaxVarintLen {
			return 0, 0, ErrVarintOverflow
		}
		b := buf[i]
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b < 0x80 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncatedVarint
}

// ConsumeTag reads a tag varint and splits it into field number and wire type.
func ConsumeTag(buf []byte) (int32, Type, int, error) {
	v, n, err := ConsumeVarint(buf)
	if err != nil {
		return 0, 0, 0, err
	}
	return int32(v >> 3), Type(v & 0x7), n, nil
}

// ConsumeFixed64 reads 8 little-endian bytes from the front of buf.
func ConsumeFixed64(buf []byte) (uint64, int, error) {
	if len(buf) < 8 {
		return 0, 0, ErrTruncatedPayload
	}
	v := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 |
		uint64(buf[3])<<24 | uint64(buf[4])<<32 | uint64(buf[5])<<40 |
		uint64(buf[6])<<48 | uint64(buf[7])<<56
	return v, 8, nil
}

// ConsumeBytes reads a varint length prefix and returns the payload it
// declares. The payload aliases buf; callers that retain it must copy.
func ConsumeBytes(buf []byte) ([]byte, int, error) {
	length, n, err := ConsumeVarint(buf)
	if err != nil {
		return nil, 0, err
	}
	if length > uint64(len(buf)-n) {
		return nil, 0, ErrTruncatedPayload
	}
	return buf[n : n+int(length)], n + int(length), nil
}
