package flow

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size of a Flow account address.
const AddressLength = 8

// Address is a Flow account address.
type Address [AddressLength]byte

// HexToAddress parses a hex address with or without 0x prefix. Short inputs are left padded.
func HexToAddress(s string) (Address, error) {
	var a Address
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return a, fmt.Errorf("empty flow address")
	}
	if len(s) > 2*AddressLength {
		return a, fmt.Errorf("flow address %q longer than %d bytes", s, AddressLength)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid flow address: %w", err)
	}
	copy(a[AddressLength-len(b):], b)
	return a, nil
}

// BytesToAddress requires exactly AddressLength bytes.
func BytesToAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("flow address must be %d bytes, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := HexToAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
