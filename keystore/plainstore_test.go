package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainKeyStoreAddGetKey(t *testing.T) {
	s := NewPlainKeyStore()
	require.False(t, s.HasKeys())

	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	require.True(t, s.AddKeyPubKey(priv, pub))
	require.True(t, s.HasKeys())

	got, ok := s.GetKey(pub.ID())
	require.True(t, ok)
	require.Equal(t, priv, got)

	gotPub, ok := s.GetPubKey(pub.ID())
	require.True(t, ok)
	require.Equal(t, pub, gotPub)

	_, ok = s.GetKey([20]byte{0xff})
	require.False(t, ok)
}

func TestPlainKeyStoreClear(t *testing.T) {
	s := NewPlainKeyStore()
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))
	require.True(t, s.HasKeys())

	s.Clear()
	require.False(t, s.HasKeys())
}

func TestPlainKeyStorePaperKeyAndPinCode(t *testing.T) {
	s := NewPlainKeyStore()

	_, ok := s.GetPaperKey()
	require.False(t, ok)

	require.True(t, s.AddPaperKey("phrase"))
	got, ok := s.GetPaperKey()
	require.True(t, ok)
	require.Equal(t, "phrase", got)

	s.ClearPaperKey()
	_, ok = s.GetPaperKey()
	require.False(t, ok)

	require.True(t, s.AddPinCode("4321"))
	pin, ok := s.GetPinCode()
	require.True(t, ok)
	require.Equal(t, "4321", pin)

	s.ClearPinCode()
	_, ok = s.GetPinCode()
	require.False(t, ok)
}

func TestPlainKeyStoreKeysSnapshot(t *testing.T) {
	s := NewPlainKeyStore()
	for i := 0; i < 3; i++ {
		priv, err := GeneratePrivateKey()
		require.NoError(t, err)
		require.True(t, s.AddKeyPubKey(priv, priv.PubKey()))
	}

	require.Len(t, s.Keys(), 3)
}
