// Command keystorecli is a small demonstration harness for the keystore
// package: it drives a single in-memory CryptoKeyStore through the key
// generation, encryption, lock/unlock, and paper-key lifecycle described in
// spec.md, printing operator-facing output as it goes. It holds no
// persistent state and defines no wire protocol; it exists only to exercise
// the package end-to-end from the command line.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/mr-tron/base58"
	"github.com/paicoin/paicoin/keystore"
)

// cliOptions are the flags accepted by keystorecli, following the
// long/description struct-tag convention used throughout lnd's own config
// structs.
type cliOptions struct {
	Passphrase string `long:"passphrase" description:"passphrase used to derive the store's master key" default:"correct horse battery staple"`
	Rounds     uint32 `long:"rounds" description:"KDF round count" default:"25000"`
	PaperKey   string `long:"paperkey" description:"paper-key mnemonic to store alongside the generated key" default:"abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"`
	PinCode    string `long:"pincode" description:"PIN code to store alongside the generated key" default:"0000"`
}

func main() {
	var opts cliOptions
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "keystorecli:", err)
		os.Exit(1)
	}
}

func run(opts cliOptions) error {
	store := keystore.NewCryptoKeyStore()
	store.SetStatusChangeCallback(func(s *keystore.CryptoKeyStore) {
		fmt.Printf("status changed: crypted=%v locked=%v\n",
			s.IsCrypted(), s.IsLocked())
	})

	priv, err := keystore.GeneratePrivateKey()
	if err != nil {
		return fmt.Errorf("generate key: %w", err)
	}
	pub := priv.PubKey()
	id := pub.ID()
	fmt.Printf("generated key, id=%s\n", base58.Encode(id[:]))

	store.AddKeyPubKey(priv, pub)
	store.AddPaperKey(opts.PaperKey)
	store.AddPinCode(opts.PinCode)

	var salt [keystore.SaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	params := keystore.KDFParams{
		Salt:   salt,
		Rounds: opts.Rounds,
		Method: keystore.DerivationMethodSHA512AES,
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("invalid KDF params: %w", err)
	}

	key, _, ok := keystore.BytesToKeySHA512AES(
		params.Salt, keystore.NewBytes([]byte(opts.Passphrase)), params.Rounds,
	)
	if !ok {
		return fmt.Errorf("derive master key: KDF failed")
	}
	master := keystore.MasterKey(key)

	if !store.EncryptKeys(master) {
		return fmt.Errorf("encrypt keys: failed")
	}
	if !store.EncryptPaperKey(master) {
		return fmt.Errorf("encrypt paper key: failed")
	}
	if !store.EncryptPinCode(master) {
		return fmt.Errorf("encrypt pin code: failed")
	}
	fmt.Println("store is now encrypted and unlocked")

	if !store.Lock() {
		return fmt.Errorf("lock: failed")
	}
	if _, ok := store.GetKey(id); ok {
		return fmt.Errorf("locked store unexpectedly returned a key")
	}
	fmt.Println("store locked; key access correctly refused")

	if !store.Unlock(master) {
		return fmt.Errorf("unlock: failed (wrong master key?)")
	}
	if _, ok := store.GetKey(id); !ok {
		return fmt.Errorf("unlocked store failed to return the key")
	}

	paperKey, ok := store.GetPaperKey()
	if !ok || paperKey != opts.PaperKey {
		return fmt.Errorf("paper key round-trip mismatch")
	}
	if valid := keystore.ValidMnemonic(paperKey); valid {
		fmt.Println("paper key round-tripped correctly; valid BIP-39 mnemonic")
	} else {
		fmt.Println("paper key round-tripped correctly; not a BIP-39 mnemonic")
	}

	pinCode, ok := store.GetPinCode()
	if !ok || pinCode != opts.PinCode {
		return fmt.Errorf("pin code round-trip mismatch")
	}
	fmt.Println("pin code round-tripped correctly")

	return nil
}
