package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePrivateKeyPubKeyRoundTrip(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	pub := priv.PubKey()
	require.True(t, priv.VerifyPubKey(pub))
	require.True(t, pub.IsCompressed())
	require.Len(t, pub.Serialize(), 33)
}

func TestNewPrivateKeyRejectsBadLength(t *testing.T) {
	_, err := NewPrivateKey(NewBytes(make([]byte, 31)), true)
	require.Error(t, err)
}

func TestNewPrivateKeyDeterministic(t *testing.T) {
	scalar := NewBytes(make([]byte, 32))
	scalar[31] = 1

	priv1, err := NewPrivateKey(scalar, true)
	require.NoError(t, err)
	priv2, err := NewPrivateKey(scalar, true)
	require.NoError(t, err)

	require.Equal(t, []byte(priv1.Bytes()), []byte(priv2.Bytes()))
	require.True(t, priv1.VerifyPubKey(priv2.PubKey()))
}

func TestPublicKeyIDAndHashDeterministic(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)
	pub := priv.PubKey()

	require.Equal(t, pub.ID(), pub.ID())
	require.Equal(t, pub.Hash(), pub.Hash())

	other, err := GeneratePrivateKey()
	require.NoError(t, err)
	require.NotEqual(t, pub.ID(), other.PubKey().ID())
}

func TestVerifyPubKeyRejectsForeignKey(t *testing.T) {
	priv, err := GeneratePrivateKey()
	require.NoError(t, err)

	other, err := GeneratePrivateKey()
	require.NoError(t, err)

	require.False(t, priv.VerifyPubKey(other.PubKey()))
}
