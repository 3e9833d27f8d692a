package dbaccess

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Keys use big-endian encoding so that lexicographic iteration order over a
// bucket matches ascending numeric order. Values use little-endian encoding,
// matching the project's wire convention.
//
// A big-endian id may contain the bucket separator byte (0x2f), e.g. id 47 or
// any id whose low byte is 47. That is safe: every key segment is fixed width
// (2-byte ids, 32-byte account ids), so a bucket path built from one id can
// never be a prefix of a path built from a different id, and
// deserializeKeyUint16 rejects keys of any other length.

func serializeKeyUint16(value uint16) []byte {
	serialized := make([]byte, 2)
	binary.BigEndian.PutUint16(serialized, value)
	return serialized
}

func deserializeKeyUint16(serialized []byte) (uint16, error) {
	if len(serialized) != 2 {
		return 0, errors.Errorf("unexpected key length %d, want 2", len(serialized))
	}
	return binary.BigEndian.Uint16(serialized), nil
}

func serializeUint16(value uint16) []byte {
	serialized := make([]byte, 2)
	binary.LittleEndian.PutUint16(serialized, value)
	return serialized
}

func deserializeUint16(serialized []byte) (uint16, error) {
	if len(serialized) != 2 {
		return 0, errors.Errorf("unexpected value length %d, want 2", len(serialized))
	}
	return binary.LittleEndian.Uint16(serialized), nil
}

func serializeUint64(value uint64) []byte {
	serialized := make([]byte, 8)
	binary.LittleEndian.PutUint64(serialized, value)
	return serialized
}

func deserializeUint64(serialized []byte) (uint64, error) {
	if len(serialized) != 8 {
		return 0, errors.Errorf("unexpected value length %d, want 8", len(serialized))
	}
	return binary.LittleEndian.Uint64(serialized), nil
}
