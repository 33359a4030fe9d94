// SPDX-License-Identifier: MIT

package types

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AssignmentDomainTag separates assignment commitment hashes from every
// other signed payload in the protocol.
const AssignmentDomainTag = "PROVER_ASSIGNMENT"

// Wallet represents a local keypair and derived address.
type Wallet struct {
	PrivateKey *ecdsa.PrivateKey
	Address    Address
}

// NewWallet generates a new secp256k1 keypair.
func NewWallet() (*Wallet, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	addr := PubKeyToAddress(&priv.PublicKey)
	return &Wallet{
		PrivateKey: priv,
		Address:    addr,
	}, nil
}

// GenerateKey returns a fresh keypair plus its derived address.
func GenerateKey() (*ecdsa.PrivateKey, Address, error) {
	priv, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, Address{}, err
	}
	return priv, PubKeyToAddress(&priv.PublicKey), nil
}

// PrivateKeyToHex exports the private key as hex string (without 0x prefix).
func PrivateKeyToHex(priv *ecdsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", errors.New("nil private key")
	}
	bytes := ethcrypto.FromECDSA(priv)
	return hex.EncodeToString(bytes), nil
}

// PrivateKeyFromHex parses a hex-encoded private key.
func PrivateKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return nil, errors.New("empty key string")
	}
	bytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, err
	}
	return ethcrypto.ToECDSA(bytes)
}

// PubKeyToAddress derives an Address from an ECDSA public key.
// Same scheme as Ethereum: last 20 bytes of keccak256(uncompressed pubkey[1:]).
func PubKeyToAddress(pub *ecdsa.PublicKey) Address {
	pubBytes := ethcrypto.FromECDSAPub(pub) // 65 bytes: 0x04 || X || Y
	hash := ethcrypto.Keccak256(pubBytes[1:])
	var addr Address
	copy(addr[:], hash[12:])
	return addr
}

/* ------------------------------------------------------- *
   COMMITMENT HASH (what the prover signs)
   Binds: domain tag, verifying engine address, blob hash,
   and every assignment field except the signature itself.
* ------------------------------------------------------- */

// ComputeCommitmentHash builds the domain-separated hash a prover must
// authorize before its assignment can settle. Pure and deterministic;
// provers run the same function off-ledger to produce signatures.
func ComputeCommitmentHash(a *Assignment, verifying Address, blobHash Hash) Hash {
	var buf bytes.Buffer
	var u64 [8]byte

	buf.WriteString(AssignmentDomainTag)
	buf.Write(verifying[:])
	buf.Write(blobHash[:])
	buf.Write(a.FeeToken[:])

	binary.BigEndian.PutUint64(u64[:], a.Expiry)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], a.MaxBlockID)
	buf.Write(u64[:])
	binary.BigEndian.PutUint64(u64[:], a.MaxProposedIn)
	buf.Write(u64[:])

	buf.Write(a.MetaHash[:])

	binary.BigEndian.PutUint64(u64[:], uint64(len(a.TierFees)))
	buf.Write(u64[:])
	for _, tf := range a.TierFees {
		var u16 [2]byte
		binary.BigEndian.PutUint16(u16[:], tf.Tier)
		buf.Write(u16[:])
		writeBig(&buf, tf.Fee)
	}

	var out Hash
	copy(out[:], ethcrypto.Keccak256(buf.Bytes()))
	return out
}

/* Helper: length-prefixed big.Int serialization, no ambiguity */
func writeBig(w interface{ Write([]byte) (int, error) }, n *big.Int) {
	if n == nil || n.Sign() == 0 {
		w.Write([]byte{0})
		return
	}
	b := n.Bytes()
	w.Write([]byte{uint8(len(b))})
	w.Write(b)
}

// SignAssignment signs the commitment hash with the given private key
// and fills a.Signature (65 bytes, r || s || v).
func SignAssignment(a *Assignment, verifying Address, blobHash Hash, priv *ecdsa.PrivateKey) error {
	if a == nil {
		return errors.New("nil assignment")
	}
	if priv == nil {
		return errors.New("nil private key")
	}

	h := ComputeCommitmentHash(a, verifying, blobHash)

	sig, err := ethcrypto.Sign(h[:], priv)
	if err != nil {
		return err
	}
	if len(sig) != 65 {
		return errors.New("unexpected signature length")
	}

	a.Signature = sig
	return nil
}

// RecoverSigner recovers the address that produced sig over hash h.
func RecoverSigner(h Hash, sig []byte) (Address, error) {
	if len(sig) != 65 {
		return Address{}, errors.New("signature must be 65 bytes")
	}

	pubKey, err := ethcrypto.SigToPub(h[:], sig)
	if err != nil {
		return Address{}, err
	}

	// VerifySignature wants the uncompressed 65-byte encoding.
	pubBytes := ethcrypto.FromECDSAPub(pubKey)
	if !ethcrypto.VerifySignature(pubBytes, h[:], sig[:64]) {
		return Address{}, errors.New("invalid signature")
	}

	return PubKeyToAddress(pubKey), nil
}
