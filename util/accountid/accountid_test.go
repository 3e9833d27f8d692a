package accountid

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestNewFromStr(t *testing.T) {
	tests := []struct {
		name          string
		id            string
		expected      string
		expectedError error
	}{
		{name: "full length",
			id:       "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20",
			expected: "0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"},
		{name: "short input is zero padded on the left",
			id:       "2a",
			expected: "000000000000000000000000000000000000000000000000000000000000002a"},
		{name: "odd length input",
			id:       "abc",
			expected: "0000000000000000000000000000000000000000000000000000000000000abc"},
		{name: "too long",
			id:            strings.Repeat("ab", MaxStringSize),
			expectedError: ErrIDStrSize},
	}

	for _, test := range tests {
		id, err := NewFromStr(test.id)
		if !errors.Is(err, test.expectedError) {
			t.Errorf("TestNewFromStr: %s: NewFromStr returned error %v, expected %v",
				test.name, err, test.expectedError)
			continue
		}
		if test.expectedError != nil {
			continue
		}
		if id.String() != test.expected {
			t.Errorf("TestNewFromStr: %s: NewFromStr returned %s, expected %s",
				test.name, id, test.expected)
		}
	}
}

func TestNew(t *testing.T) {
	idBytes := make([]byte, IDLength)
	idBytes[0] = 0xff
	id, err := New(idBytes)
	if err != nil {
		t.Fatalf("TestNew: New unexpectedly failed: %s", err)
	}
	if id[0] != 0xff {
		t.Errorf("TestNew: New did not copy the input bytes")
	}

	_, err = New(idBytes[:IDLength-1])
	if err == nil {
		t.Errorf("TestNew: New accepted a byte slice of the wrong length")
	}
}

func TestIsEqualAndCmp(t *testing.T) {
	low, err := NewFromStr("01")
	if err != nil {
		t.Fatalf("TestIsEqualAndCmp: NewFromStr unexpectedly failed: %s", err)
	}
	high, err := NewFromStr("02")
	if err != nil {
		t.Fatalf("TestIsEqualAndCmp: NewFromStr unexpectedly failed: %s", err)
	}

	if !low.IsEqual(low) {
		t.Errorf("TestIsEqualAndCmp: IsEqual returned false for identical ids")
	}
	if low.IsEqual(high) {
		t.Errorf("TestIsEqualAndCmp: IsEqual returned true for different ids")
	}
	var nilID *AccountID
	if !nilID.IsEqual(nil) {
		t.Errorf("TestIsEqualAndCmp: IsEqual returned false for two nil ids")
	}
	if low.IsEqual(nil) {
		t.Errorf("TestIsEqualAndCmp: IsEqual returned true for a nil target")
	}

	if low.Cmp(high) != -1 || high.Cmp(low) != 1 || low.Cmp(low) != 0 {
		t.Errorf("TestIsEqualAndCmp: Cmp does not order ids lexicographically")
	}
}

func TestCloneBytes(t *testing.T) {
	id, err := NewFromStr("0a0b")
	if err != nil {
		t.Fatalf("TestCloneBytes: NewFromStr unexpectedly failed: %s", err)
	}
	cloned := id.CloneBytes()
	cloned[0] = 0xff
	if id[0] == 0xff {
		t.Errorf("TestCloneBytes: mutating the clone changed the original id")
	}
}
