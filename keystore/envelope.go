package keystore

import "crypto/sha256"

// DoubleHashOfString returns SHA256(SHA256(s)), used as the domain-
// separated IV seed for the paper-key and PIN envelopes (labels "paperkey"
// and "pincode"). An empty string hashes to all zeros, matching the
// original's behavior for an unset label.
func DoubleHashOfString(s string) [32]byte {
	if len(s) == 0 {
		return [32]byte{}
	}
	first := sha256.Sum256([]byte(s))
	return sha256.Sum256(first[:])
}

// paperKeyLabel and pinCodeLabel are the fixed domain-separation labels
// for the two auxiliary secret envelopes. Changing these breaks every
// wallet that has already encrypted a paper key or PIN under them.
const (
	paperKeyLabel = "paperkey"
	pinCodeLabel  = "pincode"
)

// EncryptSecret encrypts plaintext under master, using the first IVSize
// bytes of ivSeed as the AES-CBC IV. ivSeed is expected to be a 32-byte
// value (a public key's double-SHA256 hash, or DoubleHashOfString of a
// fixed label); only its first 16 bytes are consumed.
func EncryptSecret(master MasterKey, plaintext Bytes, ivSeed [32]byte) (Bytes, bool) {
	c := NewCrypter()
	defer c.reset()
	if !c.SetKey(Bytes(master), NewBytes(ivSeed[:IVSize])) {
		return nil, false
	}
	return c.Encrypt(plaintext)
}

// DecryptSecret is the inverse of EncryptSecret.
func DecryptSecret(master MasterKey, ciphertext Bytes, ivSeed [32]byte) (Bytes, bool) {
	c := NewCrypter()
	defer c.reset()
	if !c.SetKey(Bytes(master), NewBytes(ivSeed[:IVSize])) {
		return nil, false
	}
	return c.Decrypt(ciphertext)
}

// DecryptKey decrypts a crypted private key record and re-establishes
// invariant I4: the decrypted 32-byte scalar must derive exactly the
// public key it was filed under. Any mismatch — wrong length, wrong
// master key, or a tampered/swapped record — is reported as failure
// rather than returning a key that doesn't match pub.
func DecryptKey(master MasterKey, ciphertext Bytes, pub PublicKey) (PrivateKey, bool) {
	plaintext, ok := DecryptSecret(master, ciphertext, pub.Hash())
	defer plaintext.Zero()
	if !ok {
		return nil, false
	}

	if len(plaintext) != 32 {
		return nil, false
	}

	priv, err := NewPrivateKey(plaintext, pub.IsCompressed())
	if err != nil {
		return nil, false
	}

	if !priv.VerifyPubKey(pub) {
		return nil, false
	}

	return priv, true
}
