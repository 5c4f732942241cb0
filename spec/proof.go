package spec

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/rlp"
)

// Encode returns the RLP list [keyIndices, address, capabilityPath, signatures].
// Fields are written in this fixed order; the layout does not depend on struct reflection.
func (p *OwnershipProof) Encode() ([]byte, error) {
	if err := p.checkCapacity(); err != nil {
		return nil, err
	}
	w := rlp.NewEncoderBuffer(nil)
	p.writeTo(w)
	out := w.ToBytes()
	_ = w.Flush()
	return out, nil
}

// EncodeRLP implements rlp.Encoder.
func (p *OwnershipProof) EncodeRLP(w io.Writer) error {
	if err := p.checkCapacity(); err != nil {
		return err
	}
	buf := rlp.NewEncoderBuffer(w)
	p.writeTo(buf)
	return buf.Flush()
}

func (p *OwnershipProof) writeTo(w rlp.EncoderBuffer) {
	outer := w.List()

	indices := w.List()
	for _, idx := range p.KeyIndices {
		w.WriteUint64(idx)
	}
	w.ListEnd(indices)

	w.WriteBytes(p.Address)
	w.WriteString(p.CapabilityPath)

	sigs := w.List()
	for _, sig := range p.Signatures {
		w.WriteBytes(sig)
	}
	w.ListEnd(sigs)

	w.ListEnd(outer)
}

func (p *OwnershipProof) checkCapacity() error {
	if len(p.KeyIndices) > MaxProofKeys {
		return fmt.Errorf("%w: %d key indices exceed capacity %d", ErrEncoding, len(p.KeyIndices), MaxProofKeys)
	}
	if len(p.Signatures) > MaxProofKeys {
		return fmt.Errorf("%w: %d signatures exceed capacity %d", ErrEncoding, len(p.Signatures), MaxProofKeys)
	}
	if len(p.Address) > MaxAddressLength {
		return fmt.Errorf("%w: address of %d bytes exceeds capacity %d", ErrEncoding, len(p.Address), MaxAddressLength)
	}
	if len(p.CapabilityPath) > MaxCapabilityPathLength {
		return fmt.Errorf("%w: capability path of %d bytes exceeds capacity %d", ErrEncoding, len(p.CapabilityPath), MaxCapabilityPathLength)
	}
	for i, sig := range p.Signatures {
		if len(sig) > MaxSignatureLength {
			return fmt.Errorf("%w: signature %d of %d bytes exceeds capacity %d", ErrEncoding, i, len(sig), MaxSignatureLength)
		}
	}
	return nil
}

// DecodeOwnershipProof parses an encoded proof. Trailing bytes and non canonical
// integers are rejected. Empty fields decode to nil.
func DecodeOwnershipProof(b []byte) (*OwnershipProof, error) {
	kind, _, rest, err := rlp.Split(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if kind != rlp.List {
		return nil, fmt.Errorf("%w: proof is not an RLP list", ErrEncoding)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after proof", ErrEncoding, len(rest))
	}

	p := new(OwnershipProof)
	if err := p.DecodeRLP(rlp.NewStream(bytes.NewReader(b), uint64(len(b)))); err != nil {
		if errors.Is(err, ErrEncoding) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return p, nil
}

// DecodeRLP implements rlp.Decoder.
func (p *OwnershipProof) DecodeRLP(s *rlp.Stream) error {
	if _, err := s.List(); err != nil {
		return err
	}

	if _, err := s.List(); err != nil {
		return fmt.Errorf("key indices: %w", err)
	}
	var indices []uint64
	for {
		idx, err := s.Uint64()
		if errors.Is(err, rlp.EOL) {
			break
		}
		if err != nil {
			return fmt.Errorf("key index %d: %w", len(indices), err)
		}
		if len(indices) == MaxProofKeys {
			return fmt.Errorf("%w: key indices exceed capacity %d", ErrEncoding, MaxProofKeys)
		}
		indices = append(indices, idx)
	}
	if err := s.ListEnd(); err != nil {
		return err
	}

	address, err := s.Bytes()
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	if len(address) > MaxAddressLength {
		return fmt.Errorf("%w: address exceeds capacity %d", ErrEncoding, MaxAddressLength)
	}
	path, err := s.Bytes()
	if err != nil {
		return fmt.Errorf("capability path: %w", err)
	}
	if len(path) > MaxCapabilityPathLength {
		return fmt.Errorf("%w: capability path exceeds capacity %d", ErrEncoding, MaxCapabilityPathLength)
	}

	if _, err := s.List(); err != nil {
		return fmt.Errorf("signatures: %w", err)
	}
	var sigs [][]byte
	for {
		sig, err := s.Bytes()
		if errors.Is(err, rlp.EOL) {
			break
		}
		if err != nil {
			return fmt.Errorf("signature %d: %w", len(sigs), err)
		}
		if len(sigs) == MaxProofKeys {
			return fmt.Errorf("%w: signatures exceed capacity %d", ErrEncoding, MaxProofKeys)
		}
		if len(sig) > MaxSignatureLength {
			return fmt.Errorf("%w: signature %d exceeds capacity %d", ErrEncoding, len(sigs), MaxSignatureLength)
		}
		if len(sig) == 0 {
			sig = nil
		}
		sigs = append(sigs, sig)
	}
	if err := s.ListEnd(); err != nil {
		return err
	}

	if err := s.ListEnd(); err != nil {
		return err
	}

	if len(address) == 0 {
		address = nil
	}
	*p = OwnershipProof{
		KeyIndices:     indices,
		Address:        address,
		CapabilityPath: string(path),
		Signatures:     sigs,
	}
	return nil
}

// Validate checks the proof is well formed for verification.
func (p *OwnershipProof) Validate() error {
	if len(p.KeyIndices) == 0 {
		return fmt.Errorf("%w: proof carries no signatures", ErrEncoding)
	}
	if len(p.KeyIndices) != len(p.Signatures) {
		return fmt.Errorf("%w: %d key indices for %d signatures", ErrEncoding, len(p.KeyIndices), len(p.Signatures))
	}
	if len(p.Address) == 0 {
		return fmt.Errorf("%w: missing account address", ErrEncoding)
	}
	if p.CapabilityPath == "" {
		return fmt.Errorf("%w: missing capability path", ErrEncoding)
	}
	for i, sig := range p.Signatures {
		if len(sig) != SignatureLength {
			return fmt.Errorf("%w: signature %d has %d bytes, want %d", ErrEncoding, i, len(sig), SignatureLength)
		}
	}
	return p.checkCapacity()
}
