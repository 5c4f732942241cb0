package utils

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// SensitiveError keeps the real cause in the logs and shows PresentedErr to the caller.
type SensitiveError struct {
	Err          error
	PresentedErr string
}

func (e *SensitiveError) Error() string {
	return e.Err.Error()
}

func (e *SensitiveError) Unwrap() error {
	return e.Err
}

func WriteJSON(filepath string, data any) error {
	file, err := os.OpenFile(filepath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// WriteJSONResponse answers with status and data encoded as JSON.
func WriteJSONResponse(logger *zap.Logger, writer http.ResponseWriter, status int, data any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	if err := json.NewEncoder(writer).Encode(data); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// PresentedError returns the text of err that may be shown to a remote caller.
func PresentedError(err error) string {
	var sensitive *SensitiveError
	if errors.As(err, &sensitive) {
		return sensitive.PresentedErr
	}
	return err.Error()
}

// DecodeHex decodes s with or without a 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	if has0xPrefix(s) {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

// HexToAddress parses a 20 byte EVM address, rejecting anything shorter or longer.
func HexToAddress(s string) (common.Address, error) {
	decodedBytes, err := DecodeHex(s)
	if err != nil {
		return common.Address{}, err
	}
	if len(decodedBytes) != common.AddressLength {
		return common.Address{}, fmt.Errorf("not valid ETH address with len %d", len(decodedBytes))
	}
	return common.BytesToAddress(decodedBytes), nil
}

// HexToHash parses a 32 byte digest.
func HexToHash(s string) ([32]byte, error) {
	var h [32]byte
	decodedBytes, err := DecodeHex(s)
	if err != nil {
		return h, err
	}
	if len(decodedBytes) != len(h) {
		return h, fmt.Errorf("not valid digest with len %d", len(decodedBytes))
	}
	copy(h[:], decodedBytes)
	return h, nil
}

func has0xPrefix(str string) bool {
	return len(str) >= 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X')
}
