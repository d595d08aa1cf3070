// Package consent implements the signature envelope used to prove that a
// counterparty agreed to a set of loan terms off-band. The envelope carries
// the signer's ed25519 public key; the signer's ledger identity is derived
// from that key, so a verified envelope both authenticates the payload and
// names who signed it.
package consent

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrBadEnvelope   = errors.New("consent: malformed signature envelope")
	ErrBadSignature  = errors.New("consent: signature does not verify")
	ErrEmptyPayload  = errors.New("consent: empty payload")
	ErrShortDigest   = errors.New("consent: digest must be 32 bytes")
	ErrNilPrivateKey = errors.New("consent: nil private key")
)

// Envelope is a detached ed25519 signature plus the public key that made it.
type Envelope struct {
	PublicKey string `json:"public_key" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// SignerID derives the 32-char hex ledger identity bound to a public key.
// Same shape as pkg/id ids: the first 16 bytes of sha256(pubkey), hex-encoded.
func SignerID(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:16])
}

// Digest canonicalizes a payload and hashes it. Payloads must be structs with
// a fixed field order; encoding/json preserves struct order, which makes the
// digest deterministic for a given type.
func Digest(payload any) ([]byte, error) {
	if payload == nil {
		return nil, ErrEmptyPayload
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("consent: marshal payload: %w", err)
	}
	sum := sha256.Sum256(raw)
	return sum[:], nil
}

// Sign produces an envelope over a 32-byte digest.
func Sign(priv ed25519.PrivateKey, digest []byte) (Envelope, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return Envelope{}, ErrNilPrivateKey
	}
	if len(digest) != sha256.Size {
		return Envelope{}, ErrShortDigest
	}
	sig := ed25519.Sign(priv, digest)
	pub := priv.Public().(ed25519.PublicKey)
	return Envelope{
		PublicKey: base64.StdEncoding.EncodeToString(pub),
		Signature: base64.StdEncoding.EncodeToString(sig),
	}, nil
}

// Verify checks the envelope against a digest and returns the derived signer
// identity. An envelope that fails to decode or verify yields no identity.
func (e Envelope) Verify(digest []byte) (string, error) {
	if len(digest) != sha256.Size {
		return "", ErrShortDigest
	}
	pub, err := base64.StdEncoding.DecodeString(e.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return "", ErrBadEnvelope
	}
	sig, err := base64.StdEncoding.DecodeString(e.Signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return "", ErrBadEnvelope
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), digest, sig) {
		return "", ErrBadSignature
	}
	return SignerID(pub), nil
}
