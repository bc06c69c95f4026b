package keystore

// KDFParams are the parameters persisted alongside a wallet's master-key
// record so that a later Unlock can re-derive the same key from the same
// passphrase: the salt, the round count, and the derivation method.
// Changing any of these for an existing wallet breaks it, since the
// derived key/IV would no longer match the one the secrets were encrypted
// under.
//
//nolint:lll
type KDFParams struct {
	Salt   [SaltSize]byte `long:"salt" description:"8-byte salt mixed into the passphrase before key derivation"`
	Rounds uint32         `long:"rounds" description:"number of SHA-512 rounds used to derive the AES key and IV"`
	Method uint32         `long:"method" description:"key derivation method; only 0 (SHA-512 + AES) is currently defined"`
}

// DefaultKDFRounds is a reasonable number of rounds for interactive use; it
// is not a security requirement of this package, only a starting point for
// callers that have no opinion of their own.
const DefaultKDFRounds = 25000

// Validate checks that p describes a usable derivation: at least one
// round, and the only currently defined method. It does not validate the
// salt's contents, only that the struct is well-formed; SaltSize is
// enforced by the type system via the fixed-size array.
func (p KDFParams) Validate() error {
	if p.Rounds < 1 {
		return ErrBadRounds
	}
	if p.Method != DerivationMethodSHA512AES {
		return ErrBadMethod
	}
	return nil
}

// DeriveKey runs the KDF described by p over passphrase, returning a
// Crypter ready to Encrypt/Decrypt. It fails if p is invalid or the
// underlying KDF call fails.
func (p KDFParams) DeriveKey(passphrase Bytes) (*Crypter, bool) {
	if err := p.Validate(); err != nil {
		return nil, false
	}

	c := NewCrypter()
	if !c.SetKeyFromPassphrase(passphrase, p.Salt, p.Rounds, p.Method) {
		return nil, false
	}
	return c, true
}
