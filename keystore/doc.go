// Package keystore implements an in-memory, encryptable key store for a
// secp256k1-based wallet. It holds a set of private keys plus two auxiliary
// secrets, a paper-key mnemonic and a PIN code, and can transition from a
// plaintext mode to a mode where every secret is held only as ciphertext,
// protected by a caller-supplied master key.
//
// The design mirrors Bitcoin Core's CCryptoKeyStore: a single struct
// dispatches every operation on whether encryption has been turned on, and
// if so whether the master key is currently resident ("unlocked") or not
// ("locked"). Turning encryption on is one-way; there is no path back to
// plaintext storage.
package keystore
