package accountid

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
)

// IDLength is the length in bytes of an AccountID.
const IDLength = 32

// MaxStringSize is the maximum length of an AccountID string.
const MaxStringSize = IDLength * 2

// ErrIDStrSize describes an error that indicates the caller specified an ID
// string that has too many characters.
var ErrIDStrSize = errors.Errorf("max ID string length is %v bytes", MaxStringSize)

// AccountID identifies a key-holding account. Depending on context it refers
// either to a hotkey (the operational identity bound to a slot) or a coldkey
// (the owning identity funds are drawn from).
type AccountID [IDLength]byte

// String returns the AccountID as a hexadecimal string.
func (id AccountID) String() string {
	return hex.EncodeToString(id[:])
}

// CloneBytes returns a copy of the bytes which represent the ID as a byte
// slice.
//
// NOTE: It is generally cheaper to just slice the ID directly thereby reusing
// the same bytes rather than calling this method.
func (id *AccountID) CloneBytes() []byte {
	newID := make([]byte, IDLength)
	copy(newID, id[:])

	return newID
}

// SetBytes sets the bytes which represent the ID. An error is returned if
// the number of bytes passed in is not IDLength.
func (id *AccountID) SetBytes(newID []byte) error {
	if len(newID) != IDLength {
		return errors.Errorf("invalid ID length of %v, want %v", len(newID),
			IDLength)
	}
	copy(id[:], newID)

	return nil
}

// IsEqual returns true if target is the same as the ID.
func (id *AccountID) IsEqual(target *AccountID) bool {
	if id == nil && target == nil {
		return true
	}
	if id == nil || target == nil {
		return false
	}
	return *id == *target
}

// Cmp compares id and target and returns:
//
//   -1 if id <  target
//    0 if id == target
//   +1 if id >  target
func (id *AccountID) Cmp(target *AccountID) int {
	return bytes.Compare(id[:], target[:])
}

// New returns a new AccountID from a byte slice. An error is returned if
// the number of bytes passed in is not IDLength.
func New(newID []byte) (*AccountID, error) {
	var id AccountID
	err := id.SetBytes(newID)
	if err != nil {
		return nil, err
	}
	return &id, err
}

// NewFromStr creates an AccountID from an ID string. The string should be
// the hexadecimal string of the ID.
func NewFromStr(id string) (*AccountID, error) {
	idBytes, err := fromStr(id)
	if err != nil {
		return nil, err
	}
	return New(idBytes)
}

func fromStr(src string) ([]byte, error) {
	if len(src) > MaxStringSize {
		return nil, ErrIDStrSize
	}

	// Hex decoder expects the ID to be a multiple of two.
	if len(src)%2 != 0 {
		src = "0" + src
	}

	decoded, err := hex.DecodeString(src)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode ID string")
	}

	idBytes := make([]byte, IDLength)
	copy(idBytes[IDLength-len(decoded):], decoded)
	return idBytes, nil
}
