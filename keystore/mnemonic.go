package keystore

import "github.com/tyler-smith/go-bip39"

// NewMnemonic generates a fresh BIP-39 paper-key mnemonic from entropyBits
// bits of randomness (128 bits yields a 12-word phrase, 256 bits a 24-word
// phrase). This is a convenience for callers that want the store to mint
// its own paper key; spec.md itself treats the paper key as an opaque
// caller-supplied string and does not require this.
func NewMnemonic(entropyBits int) (string, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// ValidMnemonic reports whether phrase is a checksum-valid BIP-39
// mnemonic. This is a courtesy check only: AddPaperKey itself still
// accepts any opaque string, matching the original wallet's treatment of
// the paper key as an arbitrary secret, not a mnemonic specifically.
func ValidMnemonic(phrase string) bool {
	return bip39.IsMnemonicValid(phrase)
}

// AddPaperKeyMnemonic validates phrase as a BIP-39 mnemonic before handing
// it to AddPaperKey. If phrase fails the checksum it is still passed
// through unchanged (callers may legitimately want to store a non-BIP-39
// paper key), but the boolean result tells the caller whether the
// checksum held.
func (s *CryptoKeyStore) AddPaperKeyMnemonic(phrase string) (stored bool, validMnemonic bool) {
	return s.AddPaperKey(phrase), ValidMnemonic(phrase)
}
