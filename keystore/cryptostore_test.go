package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func zeroMaster() MasterKey {
	return MasterKey(make(Bytes, KeySize))
}

func TestCryptoKeyStoreUncryptedDelegatesToPlain(t *testing.T) {
	s := NewCryptoKeyStore()
	require.False(t, s.IsCrypted())
	require.False(t, s.IsLocked())

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	require.True(t, s.AddKeyPubKey(priv, pub))
	got, ok := s.GetKey(pub.ID())
	require.True(t, ok)
	require.Equal(t, priv.Bytes(), got.Bytes())
}

// TestCryptoKeyStoreSingleKeyRoundTrip mirrors spec.md §8 scenario 2: a
// single key encrypted under a fixed all-zero master key, then locked and
// unlocked.
func TestCryptoKeyStoreSingleKeyRoundTrip(t *testing.T) {
	s := NewCryptoKeyStore()

	scalar := NewBytes(make([]byte, 32))
	for i := range scalar {
		scalar[i] = 1
	}
	priv, err := NewPrivateKey(scalar, true)
	require.NoError(t, err)
	pub := priv.PubKey()

	require.True(t, s.AddKeyPubKey(priv, pub))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))
	require.True(t, s.IsCrypted())
	require.False(t, s.IsLocked())

	require.True(t, s.Lock())
	require.True(t, s.IsLocked())
	_, ok := s.GetKey(pub.ID())
	require.False(t, ok)

	require.True(t, s.Unlock(master))
	require.False(t, s.IsLocked())

	got, ok := s.GetKey(pub.ID())
	require.True(t, ok)
	require.Equal(t, []byte(priv.Bytes()), []byte(got.Bytes()))
}

// TestCryptoKeyStoreBulkEncryptLockUnlock mirrors spec.md §8 scenario 3:
// three keys encrypted, locked, and unlocked together.
func TestCryptoKeyStoreBulkEncryptLockUnlock(t *testing.T) {
	s := NewCryptoKeyStore()

	type pair struct {
		priv PrivateKey
		pub  PublicKey
	}
	var pairs []pair
	for i := 0; i < 3; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(t, err)
		pairs = append(pairs, pair{priv: priv, pub: priv.PubKey()})
		require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))
	}

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))

	require.True(t, s.Lock())
	for _, p := range pairs {
		_, ok := s.GetKey(p.pub.ID())
		require.False(t, ok)
	}

	require.True(t, s.Unlock(master))
	for _, p := range pairs {
		got, ok := s.GetKey(p.pub.ID())
		require.True(t, ok)
		require.Equal(t, []byte(p.priv.Bytes()), []byte(got.Bytes()))
	}
}

// TestCryptoKeyStoreEncryptKeysIsOneWay mirrors spec.md §8 scenario 6: a
// second call to EncryptKeys must be refused once the store has made its
// one-way transition.
func TestCryptoKeyStoreEncryptKeysIsOneWay(t *testing.T) {
	s := NewCryptoKeyStore()

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))
	require.False(t, s.EncryptKeys(master))

	other := MasterKey(NewBytes(append(make([]byte, KeySize-1), 1)))
	require.False(t, s.EncryptKeys(other))
}

// TestCryptoKeyStoreUnlockPanicsOnPartialFailure mirrors spec.md §8 scenario
// 4: a crypted key record that does not match the resident master key,
// mixed in among records that do, must trip the fatal invariant check in
// Unlock rather than silently reporting failure or success.
func TestCryptoKeyStoreUnlockPanicsOnPartialFailure(t *testing.T) {
	s := NewCryptoKeyStore()

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()
	require.True(t, s.AddKeyPubKey(priv, pub))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))

	foreign, err := GeneratePrivateKey()
	require.NoError(t, err)
	foreignPub := foreign.PubKey()

	wrongMaster := MasterKey(NewBytes(append(make([]byte, KeySize-1), 0xff)))
	foreignCiphertext, ok := EncryptSecret(wrongMaster, foreign.Bytes(), foreignPub.Hash())
	require.True(t, ok)
	require.True(t, s.AddCryptedKey(foreignPub, foreignCiphertext))

	require.Panics(t, func() {
		s.Unlock(master)
	})
}

func TestCryptoKeyStoreUnlockWrongMasterFails(t *testing.T) {
	s := NewCryptoKeyStore()
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))
	require.True(t, s.Lock())

	wrongMaster := MasterKey(NewBytes(append(make([]byte, KeySize-1), 1)))
	require.False(t, s.Unlock(wrongMaster))
	require.True(t, s.IsLocked())
}

// TestCryptoKeyStorePaperKeyAndPinCodeEnvelopes mirrors spec.md §8 scenario
// 5: the paper key and PIN code travel through their own envelopes,
// independent of the per-key ciphertexts.
func TestCryptoKeyStorePaperKeyAndPinCodeEnvelopes(t *testing.T) {
	s := NewCryptoKeyStore()

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))
	require.True(t, s.AddPaperKey("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"))
	require.True(t, s.AddPinCode("1234"))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))
	require.True(t, s.EncryptPaperKey(master))
	require.True(t, s.EncryptPinCode(master))

	require.True(t, s.Lock())
	_, ok := s.GetPaperKey()
	require.False(t, ok)
	_, ok = s.GetPinCode()
	require.False(t, ok)

	require.True(t, s.Unlock(master))

	paperKey, ok := s.GetPaperKey()
	require.True(t, ok)
	require.Equal(t, "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", paperKey)

	pinCode, ok := s.GetPinCode()
	require.True(t, ok)
	require.Equal(t, "1234", pinCode)
}

func TestCryptoKeyStoreStatusChangeCallbackFiresOutsideLock(t *testing.T) {
	s := NewCryptoKeyStore()

	var calls int
	s.SetStatusChangeCallback(func(cs *CryptoKeyStore) {
		calls++
		// Re-entering a public method from within the callback must not
		// deadlock: the callback always runs after the lock is released.
		cs.IsCrypted()
	})

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))

	master := zeroMaster()
	require.True(t, s.EncryptKeys(master))
	require.True(t, s.Lock())
	require.True(t, s.Unlock(master))

	require.Equal(t, 2, calls)
}

func TestCryptoKeyStoreSetCryptedRefusesWithPlainKeys(t *testing.T) {
	s := NewCryptoKeyStore()
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))

	require.False(t, s.SetCrypted())
	require.False(t, s.IsCrypted())
}
