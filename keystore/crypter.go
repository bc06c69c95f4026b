package keystore

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
)

const (
	// SaltSize is the required length, in bytes, of a KDF salt.
	SaltSize = 8

	// KeySize is the length, in bytes, of a derived AES-256 key.
	KeySize = 32

	// IVSize is the length, in bytes, of an AES-CBC initialization
	// vector.
	IVSize = aes.BlockSize

	// DerivationMethodSHA512AES is the only defined KDF method: iterated
	// SHA-512 feeding AES-256-CBC key and IV material. The field exists
	// for forward compatibility with future KDFs; any other value must
	// be rejected explicitly rather than silently treated as this one.
	DerivationMethodSHA512AES uint32 = 0
)

// BytesToKeySHA512AES derives a 32-byte AES-256 key and a 16-byte CBC IV
// from a passphrase and an 8-byte salt, bit-exact with OpenSSL's
// EVP_BytesToKey for the aes-256-cbc cipher and sha512 digest.
//
// Because SHA-512's 64-byte output already covers the 32-byte key plus the
// 16-byte IV, a single digest chain suffices; EVP_BytesToKey's general
// "derive more blocks until we have enough" loop never needs a second
// block here. This is a deliberate, documented deviation from the general
// algorithm, and must be preserved exactly for backward compatibility with
// existing wallets: changing it would silently re-derive different keys
// for the same passphrase.
//
// count must be at least 1; a count of 0 returns a failure, mirroring the
// original CCrypter::BytesToKeySHA512AES contract.
func BytesToKeySHA512AES(salt [SaltSize]byte, passphrase Bytes, count uint32) (key, iv Bytes, ok bool) {
	if count == 0 {
		return nil, nil, false
	}

	buf := sha512.New()
	buf.Write(passphrase)
	buf.Write(salt[:])
	digest := buf.Sum(nil)

	for i := uint32(0); i != count-1; i++ {
		next := sha512.Sum512(digest)
		zero(digest)
		digest = next[:]
	}

	key = NewBytes(digest[:KeySize])
	iv = NewBytes(digest[KeySize : KeySize+IVSize])

	zero(digest)

	return key, iv, true
}

// aesCBCEncrypt encrypts plaintext under key/iv using AES-256-CBC with
// PKCS#7 padding. The returned ciphertext is always strictly longer than
// plaintext, since at least one full block of padding is always appended.
func aesCBCEncrypt(key, iv, plaintext Bytes) (Bytes, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make(Bytes, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(ciphertext, padded)

	zero(padded)

	return ciphertext, nil
}

// aesCBCDecrypt decrypts ciphertext under key/iv and strips PKCS#7 padding.
// It fails (returning ErrBadPadding) rather than returning a
// garbage-but-non-empty plaintext on any padding inconsistency.
func aesCBCDecrypt(key, iv, ciphertext Bytes) (Bytes, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrBadPadding
	}

	padded := make(Bytes, len(ciphertext))
	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	zero(padded)
	if err != nil {
		return nil, err
	}

	return plaintext, nil
}

// pkcs7Pad appends between 1 and blockSize bytes of padding, each byte set
// to the number of padding bytes added, so the result is always a whole
// number of blocks strictly longer than the input.
func pkcs7Pad(data Bytes, blockSize int) Bytes {
	padLen := blockSize - len(data)%blockSize
	padded := make(Bytes, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

// pkcs7Unpad validates and strips PKCS#7 padding. A structurally invalid
// padding (wrong pad byte value, or a pad length of 0 or greater than
// blockSize) is treated as a decryption failure, matching the "returns 0"
// behavior of the original AES256CBCDecrypt::Decrypt.
func pkcs7Unpad(data Bytes, blockSize int) (Bytes, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, ErrBadPadding
	}

	if !bytes.Equal(data[len(data)-padLen:], bytes.Repeat([]byte{byte(padLen)}, padLen)) {
		return nil, ErrBadPadding
	}

	return NewBytes(data[:len(data)-padLen]), nil
}

// zero overwrites a raw byte slice in place. Used on scratch buffers that
// are not themselves Bytes values (e.g. the SHA-512 digest chain).
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Crypter binds the KDF and the symmetric cipher: it holds a single
// 32-byte key and 16-byte IV pair and offers Encrypt/Decrypt over them. A
// Crypter with no key loaded (fKeySet false) refuses every operation.
//
// A Crypter is never left in a half-initialized state: any failure during
// SetKey or SetKeyFromPassphrase zeroizes whatever key/IV material had
// already been copied in before returning.
type Crypter struct {
	key    Bytes
	iv     Bytes
	keySet bool
}

// NewCrypter returns a Crypter with no key material loaded.
func NewCrypter() *Crypter {
	return &Crypter{}
}

// SetKeyFromPassphrase derives a key/IV pair from passphrase and salt via
// BytesToKeySHA512AES and loads it into the Crypter. rounds must be at
// least 1, salt must be exactly SaltSize bytes, and method must be
// DerivationMethodSHA512AES; any other method value is rejected rather
// than silently defaulted, since the method field exists purely for future
// compatibility.
func (c *Crypter) SetKeyFromPassphrase(passphrase Bytes, salt [SaltSize]byte, rounds uint32, method uint32) bool {
	if rounds < 1 {
		c.reset()
		return false
	}
	if method != DerivationMethodSHA512AES {
		c.reset()
		return false
	}

	key, iv, ok := BytesToKeySHA512AES(salt, passphrase, rounds)
	if !ok || len(key) != KeySize {
		c.reset()
		return false
	}

	c.key = key
	c.iv = iv
	c.keySet = true
	return true
}

// SetKey loads an explicit key/IV pair, bypassing the KDF. key must be
// exactly KeySize bytes and iv exactly IVSize bytes.
func (c *Crypter) SetKey(key, iv Bytes) bool {
	if len(key) != KeySize || len(iv) != IVSize {
		c.reset()
		return false
	}

	c.key = NewBytes(key)
	c.iv = NewBytes(iv)
	c.keySet = true
	return true
}

// reset zeroizes and clears any key material currently loaded, leaving the
// Crypter in the same state as a freshly constructed one.
func (c *Crypter) reset() {
	c.key.Zero()
	c.iv.Zero()
	c.keySet = false
}

// Encrypt encrypts plaintext under the Crypter's loaded key/IV using
// AES-256-CBC with PKCS#7 padding. It fails if no key has been loaded.
func (c *Crypter) Encrypt(plaintext Bytes) (Bytes, bool) {
	if !c.keySet {
		return nil, false
	}

	ciphertext, err := aesCBCEncrypt(c.key, c.iv, plaintext)
	if err != nil {
		return nil, false
	}
	return ciphertext, true
}

// Decrypt decrypts ciphertext under the Crypter's loaded key/IV. It fails
// if no key has been loaded or if the ciphertext's PKCS#7 padding is
// invalid.
func (c *Crypter) Decrypt(ciphertext Bytes) (Bytes, bool) {
	if !c.keySet {
		return nil, false
	}

	plaintext, err := aesCBCDecrypt(c.key, c.iv, ciphertext)
	if err != nil {
		return nil, false
	}
	return plaintext, true
}
