package keystore

import "sync"

// PlainKeyStore holds private keys, a paper key, and a PIN code entirely in
// plaintext. It is the collaborator CryptoKeyStore delegates to whenever
// encryption has not (yet) been turned on; it is also usable standalone by
// a caller that never wants encryption at all.
//
// PlainKeyStore guards its own state with a mutex so it remains safe to use
// directly. CryptoKeyStore calls into it, sometimes while holding its own
// lock and sometimes with no lock held, but PlainKeyStore never calls back
// into CryptoKeyStore, so there is no lock-ordering hazard between the two.
type PlainKeyStore struct {
	mu sync.Mutex

	keys map[[20]byte]plainKeyEntry

	paperKey string
	pinCode  string
}

type plainKeyEntry struct {
	priv PrivateKey
	pub  PublicKey
}

// NewPlainKeyStore returns an empty PlainKeyStore.
func NewPlainKeyStore() *PlainKeyStore {
	return &PlainKeyStore{
		keys: make(map[[20]byte]plainKeyEntry),
	}
}

// AddKeyPubKey records a private/public key pair under the public key's ID.
func (s *PlainKeyStore) AddKeyPubKey(priv PrivateKey, pub PublicKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys[pub.ID()] = plainKeyEntry{priv: priv, pub: pub}
	return true
}

// GetKey returns the private key filed under id, if any.
func (s *PlainKeyStore) GetKey(id [20]byte) (PrivateKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.keys[id]
	if !ok {
		return nil, false
	}
	return entry.priv, true
}

// GetPubKey returns the public key filed under id, if any.
func (s *PlainKeyStore) GetPubKey(id [20]byte) (PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.keys[id]
	if !ok {
		return nil, false
	}
	return entry.pub, true
}

// HasKeys reports whether any private keys are currently stored. Used by
// CryptoKeyStore.SetCrypted to refuse a promotion to encrypted mode that
// would silently strand plaintext keys.
func (s *PlainKeyStore) HasKeys() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.keys) > 0
}

// Keys returns a snapshot of every stored (public key, private key) pair.
// Used by CryptoKeyStore.EncryptKeys to walk the plaintext map while
// encrypting it.
func (s *PlainKeyStore) Keys() []struct {
	Pub  PublicKey
	Priv PrivateKey
} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]struct {
		Pub  PublicKey
		Priv PrivateKey
	}, 0, len(s.keys))
	for _, entry := range s.keys {
		out = append(out, struct {
			Pub  PublicKey
			Priv PrivateKey
		}{Pub: entry.pub, Priv: entry.priv})
	}
	return out
}

// Clear empties the plaintext key map. Used once EncryptKeys has
// successfully re-filed every key under its encrypted counterpart.
func (s *PlainKeyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = make(map[[20]byte]plainKeyEntry)
}

// AddPaperKey stores p as the plaintext paper key.
func (s *PlainKeyStore) AddPaperKey(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paperKey = p
	return true
}

// GetPaperKey returns the plaintext paper key, if one has been set.
func (s *PlainKeyStore) GetPaperKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.paperKey == "" {
		return "", false
	}
	return s.paperKey, true
}

// AddPinCode stores p as the plaintext PIN code.
func (s *PlainKeyStore) AddPinCode(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pinCode = p
	return true
}

// ClearPaperKey wipes the cached plaintext paper key. Used once its
// ciphertext form has been filed, so the plaintext copy doesn't linger.
func (s *PlainKeyStore) ClearPaperKey() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.paperKey = ""
}

// ClearPinCode wipes the cached plaintext PIN code, symmetric to
// ClearPaperKey.
func (s *PlainKeyStore) ClearPinCode() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pinCode = ""
}

// GetPinCode returns the plaintext PIN code, if one has been set.
func (s *PlainKeyStore) GetPinCode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pinCode == "" {
		return "", false
	}
	return s.pinCode, true
}
