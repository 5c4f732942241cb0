package spec

// Field capacities enforced by the proof codec.
const (
	MaxProofKeys            = 256
	MaxAddressLength        = 32
	MaxCapabilityPathLength = 256
	MaxSignatureLength      = 128
)

// FullWeight is the accumulated key weight an ownership proof must reach.
const FullWeight = 1000

// OwnershipProof binds a source ledger account to a contract on the target ledger
type OwnershipProof struct {
	// KeyIndices of the account keys that produced Signatures, pairwise
	KeyIndices []uint64
	// Address of the source ledger account
	Address []byte
	// CapabilityPath is the storage path identifier of the account's COA
	CapabilityPath string
	// Signatures are r || s values over the user tagged message digest
	Signatures [][]byte
}

// AccountKey is a public key registered on the source ledger account
type AccountKey struct {
	// PublicKey raw 64 byte X || Y secp256k1 key
	PublicKey     []byte
	HashAlgorithm HashAlgorithm
	Weight        uint64
	Revoked       bool
}
