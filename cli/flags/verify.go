package flags

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ssvlabs/coa-proof/pkgs/utils"
	"github.com/ssvlabs/coa-proof/spec"
)

// Flag names.
const (
	message = "message"
	digest  = "digest"
	proof   = "proof"
	target  = "target"
	retry   = "retry"
)

// verify flags
var (
	Message       []byte
	MessageDigest [32]byte
	Proof         []byte
	Target        common.Address
	Retry         bool
)

// MessageFlag adds the message to sign or verify flag to the command
func MessageFlag(c *cobra.Command) {
	AddPersistentStringFlag(c, message, "", "Message as plain text", false)
}

// BindMessageFlag binds the message flag, it must not be empty
func BindMessageFlag(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, message); err != nil {
		return err
	}
	Message = []byte(viper.GetString(message))
	if len(Message) == 0 {
		return fmt.Errorf("😥 message flag is required")
	}
	MessageDigest = spec.MessageDigest(Message)
	return nil
}

func SetVerifyFlags(cmd *cobra.Command) {
	MessageFlag(cmd)
	AddPersistentStringFlag(cmd, digest, "", "Hex message digest, replaces --message", false)
	AddPersistentStringFlag(cmd, proof, "", "Hex RLP encoded ownership proof", false)
	AddPersistentStringFlag(cmd, target, "", "Address of the COA contract on Flow EVM, resolved from the proof account when empty", false)
	AddPersistentBoolFlag(cmd, retry, true, "Retry transport failures", false)
}

// BindVerifyFlags binds flags to yaml config parameters for the verification
func BindVerifyFlags(cmd *cobra.Command) error {
	if err := bindPersistent(cmd, message, digest, proof, target, retry); err != nil {
		return err
	}
	rawMessage, rawDigest := viper.GetString(message), viper.GetString(digest)
	switch {
	case rawMessage != "" && rawDigest != "":
		return fmt.Errorf("😥 message and digest flags are mutually exclusive")
	case rawDigest != "":
		d, err := utils.HexToHash(rawDigest)
		if err != nil {
			return fmt.Errorf("😥 wrong digest flag: %w", err)
		}
		Message, MessageDigest = nil, d
	case rawMessage != "":
		Message = []byte(rawMessage)
		MessageDigest = spec.MessageDigest(Message)
	default:
		return fmt.Errorf("😥 message or digest flag is required")
	}
	var err error
	Proof, err = utils.DecodeHex(viper.GetString(proof))
	if err != nil || len(Proof) == 0 {
		return fmt.Errorf("😥 wrong proof flag: %v", err)
	}
	Target = common.Address{}
	if raw := viper.GetString(target); raw != "" {
		Target, err = utils.HexToAddress(raw)
		if err != nil {
			return fmt.Errorf("😥 wrong target flag: %w", err)
		}
	}
	Retry = viper.GetBool(retry)
	return nil
}
