package keystore

import "encoding/json"

// Bytes is a byte buffer carrying secret material: a passphrase, a derived
// key, a decrypted private key, or the master key itself. Every call site
// that produces one of these must wipe it with Zero before the buffer goes
// out of scope, including on error paths.
//
// Bytes overrides String, GoString, and MarshalJSON so that none of them
// ever surface its contents; accidental %v/%s logging or JSON encoding of a
// Bytes never leaks key material.
type Bytes []byte

// NewBytes copies src into a freshly allocated Bytes. The caller retains
// ownership of src; it is not zeroed by this call.
func NewBytes(src []byte) Bytes {
	b := make(Bytes, len(src))
	copy(b, src)
	return b
}

// Zero overwrites the buffer's backing array with zeros and truncates it to
// length zero. It is safe to call Zero on a nil or already-zeroed Bytes.
func (b *Bytes) Zero() {
	if b == nil {
		return
	}
	for i := range *b {
		(*b)[i] = 0
	}
	*b = (*b)[:0]
}

// String never reveals the contents of the buffer. Secret material must
// never appear in a log line or an error message.
func (b Bytes) String() string {
	return "<redacted>"
}

// GoString mirrors String so that %#v formatting (e.g. from a test failure
// message or a debugger) never prints key material either.
func (b Bytes) GoString() string {
	return "keystore.Bytes(<redacted>)"
}

// MarshalJSON mirrors String so that encoding a struct containing a Bytes
// field never serializes key material into a log or API response.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("<redacted>")
}
