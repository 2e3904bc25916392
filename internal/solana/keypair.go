package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ErrInvalidSecretKey is returned when secret key material cannot be decoded.
var ErrInvalidSecretKey = errors.New("invalid secret key")

// Keypair is an ed25519 signing identity.
type Keypair struct {
	private ed25519.PrivateKey
	public  PublicKey
}

// NewKeypairFromSecretKey builds a keypair from a 64-byte secret key
// (seed followed by public key). The embedded public key must match the seed.
func NewKeypairFromSecretKey(secret []byte) (*Keypair, error) {
	if len(secret) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSecretKey, ed25519.PrivateKeySize, len(secret))
	}

	priv := ed25519.NewKeyFromSeed(secret[:ed25519.SeedSize])
	if !bytes.Equal(priv[ed25519.SeedSize:], secret[ed25519.SeedSize:]) {
		return nil, fmt.Errorf("%w: public key does not match seed", ErrInvalidSecretKey)
	}

	kp := &Keypair{private: priv}
	copy(kp.public[:], priv[ed25519.SeedSize:])
	return kp, nil
}

// NewKeypairFromSeed builds a keypair from a 32-byte ed25519 seed.
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: expected %d byte seed, got %d", ErrInvalidSecretKey, ed25519.SeedSize, len(seed))
	}
	return NewKeypairFromSecretKey(ed25519.NewKeyFromSeed(seed))
}

// ParseKeypair decodes an encoded secret key. Both the base58 form exported
// by wallets and the JSON byte array written by solana-keygen are accepted.
func ParseKeypair(encoded string) (*Keypair, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSecretKey)
	}

	if strings.HasPrefix(encoded, "[") {
		var raw []byte
		var ints []int
		if err := json.Unmarshal([]byte(encoded), &ints); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
		}
		raw = make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("%w: byte %d out of range", ErrInvalidSecretKey, i)
			}
			raw[i] = byte(v)
		}
		return NewKeypairFromSecretKey(raw)
	}

	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecretKey, err)
	}
	return NewKeypairFromSecretKey(raw)
}

// PublicKey returns the keypair's address.
func (k *Keypair) PublicKey() PublicKey {
	return k.public
}

// Sign signs message with the private key.
func (k *Keypair) Sign(message []byte) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(k.private, message))
	return sig
}

// SecretKey returns the base58 64-byte secret key.
func (k *Keypair) SecretKey() string {
	return base58.Encode(k.private)
}

// SignatureSize is the length of an ed25519 signature.
const SignatureSize = 64

// Signature is an ed25519 transaction signature.
type Signature [SignatureSize]byte

// String returns the base58 form, which is also the transaction ID.
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// IsZero reports whether the signature is unset.
func (s Signature) IsZero() bool {
	return s == Signature{}
}

// Verify checks the signature over message against pub.
func (s Signature) Verify(pub PublicKey, message []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), message, s[:])
}
