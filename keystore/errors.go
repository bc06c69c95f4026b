package keystore

import "errors"

// Errors returned by the package's internal helpers. The public surface of
// Crypter, PlainKeyStore, and CryptoKeyStore stays boolean, per the historical
// API contract this package preserves; these surface failure detail one
// level down, at the KDF/config and cipher layers.
var (
	// ErrBadRounds is returned when the KDF round count is zero.
	ErrBadRounds = errors.New("crypter: rounds must be at least 1")

	// ErrBadMethod is returned when a derivation method other than the
	// single defined method (SHA-512 + AES) is requested.
	ErrBadMethod = errors.New("crypter: unsupported derivation method")

	// ErrBadPadding is returned when PKCS#7 unpadding rejects a ciphertext.
	ErrBadPadding = errors.New("crypter: invalid padding")
)
