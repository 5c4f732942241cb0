package flow

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Value is a JSON-Cadence encoded value.
type Value struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func AddressValue(a Address) Value {
	raw, _ := json.Marshal(a.Hex())
	return Value{Type: "Address", Value: raw}
}

func StringValue(s string) Value {
	raw, _ := json.Marshal(s)
	return Value{Type: "String", Value: raw}
}

// ToString unwraps a String value.
func (v Value) ToString() (string, error) {
	if v.Type != "String" {
		return "", fmt.Errorf("expected cadence String, got %s", v.Type)
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return "", fmt.Errorf("invalid cadence String: %w", err)
	}
	return s, nil
}

// ToAddress unwraps an Address value.
func (v Value) ToAddress() (Address, error) {
	if v.Type != "Address" {
		return Address{}, fmt.Errorf("expected cadence Address, got %s", v.Type)
	}
	var s string
	if err := json.Unmarshal(v.Value, &s); err != nil {
		return Address{}, fmt.Errorf("invalid cadence Address: %w", err)
	}
	return HexToAddress(s)
}

func encodeArgument(v Value) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func decodeValue(encoded string) (Value, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Value{}, fmt.Errorf("invalid base64 script result: %w", err)
	}
	var v Value
	if err := json.Unmarshal(b, &v); err != nil {
		return Value{}, fmt.Errorf("invalid cadence value: %w", err)
	}
	return v, nil
}
