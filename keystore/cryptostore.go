package keystore

import "sync"

// MasterKey is the 32-byte symmetric key under which every per-secret
// ciphertext in an encrypted CryptoKeyStore is protected. It is resident
// only while the store is unlocked.
type MasterKey Bytes

// StatusChangeFunc is invoked after a successful Lock or Unlock. It is
// always called outside of CryptoKeyStore's critical section, so a
// listener is free to call back into the store without causing deadlock.
type StatusChangeFunc func(*CryptoKeyStore)

type cryptedKeyEntry struct {
	pub        PublicKey
	ciphertext Bytes
}

// CryptoKeyStore is an in-memory key store that can transition, once and
// irreversibly, from holding keys in plaintext to holding them only as
// ciphertext protected by a caller-supplied master key. It models the
// states {uncrypted, encrypted+locked, encrypted+unlocked} and dispatches
// every public operation on which state it is currently in.
//
// The zero value is not usable; construct with NewCryptoKeyStore.
type CryptoKeyStore struct {
	mu sync.Mutex

	plain *PlainKeyStore

	useCrypto                   bool
	decryptionThoroughlyChecked bool

	masterKey MasterKey

	cryptedKeys     map[[20]byte]cryptedKeyEntry
	cryptedPaperKey Bytes
	cryptedPinCode  Bytes

	onStatusChange StatusChangeFunc
}

// NewCryptoKeyStore returns an uncrypted CryptoKeyStore backed by a fresh
// PlainKeyStore.
func NewCryptoKeyStore() *CryptoKeyStore {
	return &CryptoKeyStore{
		plain:       NewPlainKeyStore(),
		cryptedKeys: make(map[[20]byte]cryptedKeyEntry),
	}
}

// SetStatusChangeCallback registers the function invoked after every
// successful Lock/Unlock. A nil callback disables notification.
func (s *CryptoKeyStore) SetStatusChangeCallback(fn StatusChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onStatusChange = fn
}

// IsCrypted reports whether the store has made its one-way transition to
// encrypted mode.
func (s *CryptoKeyStore) IsCrypted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.useCrypto
}

// IsLocked reports whether the store is encrypted and currently has no
// master key resident. An uncrypted store is never locked.
func (s *CryptoKeyStore) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.isLockedLocked()
}

func (s *CryptoKeyStore) isLockedLocked() bool {
	return s.useCrypto && len(s.masterKey) == 0
}

// setCryptedLocked idempotently promotes the store to encrypted mode. It
// refuses the promotion if plaintext keys are still present, since that
// would silently strand them: once fUseCrypto flips true the plaintext map
// is never consulted for keys again (invariant I1).
func (s *CryptoKeyStore) setCryptedLocked() bool {
	if s.useCrypto {
		return true
	}
	if s.plain.HasKeys() {
		return false
	}
	s.useCrypto = true
	return true
}

// SetCrypted is the exported form of setCryptedLocked, used by callers
// (e.g. persistence layers replaying a crypted wallet file) that need to
// flip the store into encrypted mode before filing any crypted records.
func (s *CryptoKeyStore) SetCrypted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.setCryptedLocked()
}

// EncryptKeys performs the bulk, one-time transition from plaintext to
// encrypted storage: every key currently in the plaintext map is
// re-encrypted under masterIn and filed into the crypted map, after which
// the plaintext map is cleared. On success masterIn becomes the resident
// master key, leaving the store encrypted and unlocked, ready for further
// calls such as EncryptPaperKey/EncryptPinCode without an intervening
// Unlock.
//
// EncryptKeys can only be called once; a store that already holds any
// crypted keys, or has already flipped fUseCrypto, refuses a second call,
// preserving invariant I5 (the one-way transition).
//
// If encryption of some key fails partway through, EncryptKeys returns
// false leaving fUseCrypto already set to true and mapCryptedKeys
// partially populated while mapKeys is still intact. This mirrors the
// original CCryptoKeyStore::EncryptKeys, which clears mapKeys only after
// the loop completes; a caller that sees EncryptKeys fail is expected to
// discard the store rather than attempt to recover it.
func (s *CryptoKeyStore) EncryptKeys(masterIn MasterKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cryptedKeys) != 0 || s.useCrypto {
		return false
	}

	s.useCrypto = true

	for _, entry := range s.plain.Keys() {
		secret := entry.Priv.Bytes()
		ciphertext, ok := EncryptSecret(masterIn, secret, entry.Pub.Hash())
		secret.Zero()
		if !ok {
			log.Errorf("EncryptKeys: failed to encrypt key %x, "+
				"aborting bulk transition", entry.Pub.ID())
			return false
		}
		if !s.addCryptedKeyLocked(entry.Pub, ciphertext) {
			return false
		}
	}

	s.plain.Clear()
	s.masterKey = MasterKey(NewBytes(masterIn))
	return true
}

// Lock clears the resident master key, if any, returning the store to the
// locked state. Lock is idempotent: calling it on an already-locked store
// succeeds. An uncrypted store with no plaintext keys is promoted to
// encrypted-but-never-unlocked; an uncrypted store that still holds
// plaintext keys is left unchanged and Lock returns false.
func (s *CryptoKeyStore) Lock() bool {
	s.mu.Lock()
	ok := s.setCryptedLocked()
	if ok {
		(*Bytes)(&s.masterKey).Zero()
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// Unlock validates masterIn against every crypted key on file and, if
// every key decrypts successfully, loads it as the resident master key.
//
// Unlock is the partial-failure detector described in spec.md §4.G: if
// masterIn decrypts some keys but not others, the wallet's invariant I4 has
// been violated (it holds keys encrypted under two different master keys,
// or has been tampered with) and Unlock panics rather than returning an
// error the caller might paper over. A key that fails to decrypt does not
// end the walk until a key that succeeds has also been seen, so the
// outcome does not depend on map iteration order.
//
// Once a full walk has completed without any failure,
// decryptionThoroughlyChecked is latched true and subsequent calls only
// need to verify a single key before trusting masterIn, matching the fast
// path in the original implementation.
func (s *CryptoKeyStore) Unlock(masterIn MasterKey) bool {
	s.mu.Lock()

	if !s.setCryptedLocked() {
		s.mu.Unlock()
		return false
	}

	var keyPass, keyFail bool
	for _, entry := range s.cryptedKeys {
		if _, ok := DecryptKey(masterIn, entry.ciphertext, entry.pub); ok {
			keyPass = true
		} else {
			keyFail = true
		}
		if (keyPass && keyFail) || s.decryptionThoroughlyChecked {
			break
		}
	}

	if keyPass && keyFail {
		s.mu.Unlock()
		log.Criticalf("wallet is probably corrupted: some keys " +
			"decrypt under the supplied master key but not all")
		panic("keystore: inconsistent crypted key set: " +
			"some keys decrypt, some do not")
	}

	if keyFail || !keyPass {
		s.mu.Unlock()
		return false
	}

	s.masterKey = MasterKey(NewBytes(masterIn))
	s.decryptionThoroughlyChecked = true
	s.mu.Unlock()

	s.notify()
	return true
}

func (s *CryptoKeyStore) notify() {
	if s.onStatusChange != nil {
		s.onStatusChange(s)
	}
}

// AddKeyPubKey files priv under pub. On an uncrypted store this delegates
// to the plaintext store; on a locked store it fails; on an unlocked
// encrypted store it encrypts priv under the resident master key, bound to
// pub's hash as the IV seed, and files the ciphertext.
func (s *CryptoKeyStore) AddKeyPubKey(priv PrivateKey, pub PublicKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useCrypto {
		return s.plain.AddKeyPubKey(priv, pub)
	}
	if s.isLockedLocked() {
		return false
	}

	secret := priv.Bytes()
	ciphertext, ok := EncryptSecret(s.masterKey, secret, pub.Hash())
	secret.Zero()
	if !ok {
		return false
	}

	return s.addCryptedKeyLocked(pub, ciphertext)
}

// AddCryptedKey files an already-encrypted secret under pub's ID. It does
// not verify the ciphertext against pub; an inconsistent record filed this
// way will instead surface as a partial-failure abort on the next Unlock.
func (s *CryptoKeyStore) AddCryptedKey(pub PublicKey, ciphertext Bytes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addCryptedKeyLocked(pub, ciphertext)
}

func (s *CryptoKeyStore) addCryptedKeyLocked(pub PublicKey, ciphertext Bytes) bool {
	if !s.setCryptedLocked() {
		return false
	}
	s.cryptedKeys[pub.ID()] = cryptedKeyEntry{pub: pub, ciphertext: ciphertext}
	return true
}

// GetKey returns the private key filed under id, decrypting it if the
// store is encrypted. It fails if the store is locked or id is unknown.
func (s *CryptoKeyStore) GetKey(id [20]byte) (PrivateKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useCrypto {
		return s.plain.GetKey(id)
	}

	entry, ok := s.cryptedKeys[id]
	if !ok {
		return nil, false
	}
	return DecryptKey(s.masterKey, entry.ciphertext, entry.pub)
}

// GetPubKey returns the public key filed under id. On an encrypted store
// this never requires the master key to be resident, since public keys
// are stored in the clear alongside their ciphertexts. When id has no
// crypted entry it falls back to the plaintext store's key map, which is
// empty once encryption is on; there is no separate watch-only key set.
func (s *CryptoKeyStore) GetPubKey(id [20]byte) (PublicKey, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useCrypto {
		return s.plain.GetPubKey(id)
	}

	if entry, ok := s.cryptedKeys[id]; ok {
		return entry.pub, true
	}
	return s.plain.GetPubKey(id)
}

// AddPaperKey files the paper-key mnemonic p, encrypting it under the
// resident master key when the store is unlocked-and-encrypted, or
// delegating to the plaintext store otherwise. It fails on a locked store.
func (s *CryptoKeyStore) AddPaperKey(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useCrypto {
		return s.plain.AddPaperKey(p)
	}
	if s.isLockedLocked() {
		return false
	}

	plaintext := NewBytes([]byte(p))
	ciphertext, ok := EncryptSecret(s.masterKey, plaintext, DoubleHashOfString(paperKeyLabel))
	plaintext.Zero()
	if !ok {
		return false
	}
	defer ciphertext.Zero()

	return s.addCryptedPaperKeyLocked(ciphertext)
}

// GetPaperKey returns the paper key. A plaintext copy cached after a prior
// decrypt (see DecryptPaperKey) is returned immediately without touching
// the master key; otherwise an uncrypted store delegates directly, and a
// locked encrypted store fails.
func (s *CryptoKeyStore) GetPaperKey() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.plain.GetPaperKey(); ok {
		return cached, true
	}
	if !s.useCrypto {
		return s.plain.GetPaperKey()
	}
	if s.isLockedLocked() {
		return "", false
	}

	plaintext, ok := DecryptSecret(s.masterKey, s.cryptedPaperKey, DoubleHashOfString(paperKeyLabel))
	if !ok {
		return "", false
	}
	defer plaintext.Zero()

	return string(plaintext), true
}

// DecryptPaperKey decrypts the paper key and caches the plaintext result
// so that subsequent GetPaperKey calls avoid re-touching the master key.
// It is a no-op if no paper key is available.
func (s *CryptoKeyStore) DecryptPaperKey() {
	if p, ok := s.GetPaperKey(); ok {
		s.plain.AddPaperKey(p)
	}
}

// EncryptPaperKey is the one-shot transition used during initial bulk
// encryption: it reads the current plaintext paper key, encrypts it under
// masterIn, stores the ciphertext, and wipes the cached plaintext copy.
func (s *CryptoKeyStore) EncryptPaperKey(masterIn MasterKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLockedLocked() {
		return false
	}

	cached, ok := s.plain.GetPaperKey()
	if !ok {
		return false
	}

	plaintext := NewBytes([]byte(cached))
	ciphertext, ok := EncryptSecret(masterIn, plaintext, DoubleHashOfString(paperKeyLabel))
	plaintext.Zero()
	if !ok {
		return false
	}
	defer ciphertext.Zero()

	s.cryptedPaperKey = NewBytes(ciphertext)
	s.plain.ClearPaperKey()
	return true
}

// AddCryptedPaperKey files an already-encrypted paper key, promoting the
// store to encrypted mode if necessary.
func (s *CryptoKeyStore) AddCryptedPaperKey(ciphertext Bytes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addCryptedPaperKeyLocked(ciphertext)
}

func (s *CryptoKeyStore) addCryptedPaperKeyLocked(ciphertext Bytes) bool {
	if !s.setCryptedLocked() {
		return false
	}
	s.cryptedPaperKey = NewBytes(ciphertext)
	return true
}

// GetCryptedPaperKey returns the raw paper-key ciphertext, for use by a
// persistence layer. It fails while locked, or if no paper key is set.
func (s *CryptoKeyStore) GetCryptedPaperKey() (Bytes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLockedLocked() {
		return nil, false
	}
	if len(s.cryptedPaperKey) == 0 {
		return nil, false
	}
	return NewBytes(s.cryptedPaperKey), true
}

// AddPinCode, GetPinCode, DecryptPinCode, EncryptPinCode,
// AddCryptedPinCode, and GetCryptedPinCode mirror the paper-key envelope
// above exactly, under the independent domain-separation label "pincode".

// AddPinCode files the PIN code p, symmetric to AddPaperKey.
func (s *CryptoKeyStore) AddPinCode(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useCrypto {
		return s.plain.AddPinCode(p)
	}
	if s.isLockedLocked() {
		return false
	}

	plaintext := NewBytes([]byte(p))
	ciphertext, ok := EncryptSecret(s.masterKey, plaintext, DoubleHashOfString(pinCodeLabel))
	plaintext.Zero()
	if !ok {
		return false
	}
	defer ciphertext.Zero()

	return s.addCryptedPinCodeLocked(ciphertext)
}

// GetPinCode returns the PIN code, symmetric to GetPaperKey.
func (s *CryptoKeyStore) GetPinCode() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.plain.GetPinCode(); ok {
		return cached, true
	}
	if !s.useCrypto {
		return s.plain.GetPinCode()
	}
	if s.isLockedLocked() {
		return "", false
	}

	plaintext, ok := DecryptSecret(s.masterKey, s.cryptedPinCode, DoubleHashOfString(pinCodeLabel))
	if !ok {
		return "", false
	}
	defer plaintext.Zero()

	return string(plaintext), true
}

// DecryptPinCode decrypts the PIN code and caches the plaintext result,
// symmetric to DecryptPaperKey.
func (s *CryptoKeyStore) DecryptPinCode() {
	if p, ok := s.GetPinCode(); ok {
		s.plain.AddPinCode(p)
	}
}

// EncryptPinCode is the one-shot transition used during initial bulk
// encryption, symmetric to EncryptPaperKey.
func (s *CryptoKeyStore) EncryptPinCode(masterIn MasterKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLockedLocked() {
		return false
	}

	cached, ok := s.plain.GetPinCode()
	if !ok {
		return false
	}

	plaintext := NewBytes([]byte(cached))
	ciphertext, ok := EncryptSecret(masterIn, plaintext, DoubleHashOfString(pinCodeLabel))
	plaintext.Zero()
	if !ok {
		return false
	}
	defer ciphertext.Zero()

	s.cryptedPinCode = NewBytes(ciphertext)
	s.plain.ClearPinCode()
	return true
}

// AddCryptedPinCode files an already-encrypted PIN code, symmetric to
// AddCryptedPaperKey.
func (s *CryptoKeyStore) AddCryptedPinCode(ciphertext Bytes) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addCryptedPinCodeLocked(ciphertext)
}

func (s *CryptoKeyStore) addCryptedPinCodeLocked(ciphertext Bytes) bool {
	if !s.setCryptedLocked() {
		return false
	}
	s.cryptedPinCode = NewBytes(ciphertext)
	return true
}

// GetCryptedPinCode returns the raw PIN-code ciphertext, symmetric to
// GetCryptedPaperKey.
func (s *CryptoKeyStore) GetCryptedPinCode() (Bytes, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isLockedLocked() {
		return nil, false
	}
	if len(s.cryptedPinCode) == 0 {
		return nil, false
	}
	return NewBytes(s.cryptedPinCode), true
}
