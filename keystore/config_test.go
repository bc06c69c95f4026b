package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKDFParamsValidate(t *testing.T) {
	var salt [SaltSize]byte

	require.NoError(t, KDFParams{Salt: salt, Rounds: 1, Method: DerivationMethodSHA512AES}.Validate())

	require.ErrorIs(t, KDFParams{Salt: salt, Rounds: 0, Method: DerivationMethodSHA512AES}.Validate(), ErrBadRounds)
	require.ErrorIs(t, KDFParams{Salt: salt, Rounds: 1, Method: 1}.Validate(), ErrBadMethod)
}

func TestKDFParamsDeriveKey(t *testing.T) {
	var salt [SaltSize]byte
	p := KDFParams{Salt: salt, Rounds: DefaultKDFRounds, Method: DerivationMethodSHA512AES}

	c, ok := p.DeriveKey(NewBytes([]byte("correct horse battery staple")))
	require.True(t, ok)
	require.True(t, c.keySet)

	bad := KDFParams{Salt: salt, Rounds: 0, Method: DerivationMethodSHA512AES}
	_, ok = bad.DeriveKey(NewBytes([]byte("x")))
	require.False(t, ok)
}
