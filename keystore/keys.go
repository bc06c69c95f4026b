package keystore

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/ripemd160"
)

// PrivateKey is the external collaborator a CryptoKeyStore operates over:
// a 32-byte secp256k1 scalar plus the compression flag of its public key.
// spec.md treats the underlying elliptic-curve math as out of scope; this
// interface is the minimal surface the store needs, backed concretely by
// secp256k1PrivateKey below.
type PrivateKey interface {
	// Bytes returns the raw 32-byte scalar.
	Bytes() Bytes

	// PubKey derives the matching public key.
	PubKey() PublicKey

	// VerifyPubKey reports whether pub is this key's matching public
	// key. Used to re-establish invariant I4 on every decrypt.
	VerifyPubKey(pub PublicKey) bool
}

// PublicKey is the external collaborator surfacing a secp256k1 public key.
type PublicKey interface {
	// ID returns the 20-byte key identifier (Hash160 of the serialized
	// public key), used as the map key in both plaintext and encrypted
	// key stores.
	ID() [20]byte

	// Hash returns the 32-byte double-SHA256 of the serialized public
	// key. Its first 16 bytes are used as the per-secret AES-CBC IV
	// that binds a ciphertext to the key it protects.
	Hash() [32]byte

	// IsCompressed reports whether this public key serializes to 33
	// bytes (true) or 65 bytes (false).
	IsCompressed() bool

	// Serialize returns the encoded public key, compressed or
	// uncompressed according to IsCompressed.
	Serialize() []byte
}

// GeneratePrivateKey creates a new random secp256k1 private key with a
// compressed public key.
func GeneratePrivateKey() (PrivateKey, error) {
	key, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("keystore: generate private key: %w", err)
	}
	return &secp256k1PrivateKey{key: key, compressed: true}, nil
}

// NewPrivateKey constructs a PrivateKey from a raw 32-byte scalar, with the
// given compression flag carried over from the public key it is paired
// with (per spec.md §3, the compression flag lives on the key record, not
// derived from the scalar itself).
func NewPrivateKey(scalar Bytes, compressed bool) (PrivateKey, error) {
	if len(scalar) != 32 {
		return nil, fmt.Errorf("keystore: private key must be 32 bytes, got %d", len(scalar))
	}
	key, _ := btcec.PrivKeyFromBytes(scalar)
	return &secp256k1PrivateKey{key: key, compressed: compressed}, nil
}

type secp256k1PrivateKey struct {
	key        *btcec.PrivateKey
	compressed bool
}

func (p *secp256k1PrivateKey) Bytes() Bytes {
	return NewBytes(p.key.Serialize())
}

func (p *secp256k1PrivateKey) PubKey() PublicKey {
	return &secp256k1PublicKey{
		key:        p.key.PubKey(),
		compressed: p.compressed,
	}
}

func (p *secp256k1PrivateKey) VerifyPubKey(pub PublicKey) bool {
	ours := p.PubKey()
	if ours.IsCompressed() != pub.IsCompressed() {
		return false
	}
	a, b := ours.Serialize(), pub.Serialize()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type secp256k1PublicKey struct {
	key        *btcec.PublicKey
	compressed bool
}

// NewPublicKey wraps a *btcec.PublicKey as a keystore.PublicKey.
func NewPublicKey(key *btcec.PublicKey, compressed bool) PublicKey {
	return &secp256k1PublicKey{key: key, compressed: compressed}
}

func (p *secp256k1PublicKey) Serialize() []byte {
	if p.compressed {
		return p.key.SerializeCompressed()
	}
	return p.key.SerializeUncompressed()
}

func (p *secp256k1PublicKey) IsCompressed() bool {
	return p.compressed
}

func (p *secp256k1PublicKey) Hash() [32]byte {
	first := sha256.Sum256(p.Serialize())
	return sha256.Sum256(first[:])
}

func (p *secp256k1PublicKey) ID() [20]byte {
	var id [20]byte
	copy(id[:], hash160(p.Serialize()))
	return id
}

// hash160 computes ripemd160(sha256(buf)), the standard Bitcoin-family
// public-key-to-address-identifier hash, grounded on btcutil's Hash160.
func hash160(buf []byte) []byte {
	sha := sha256.Sum256(buf)
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return ripe.Sum(nil)
}
