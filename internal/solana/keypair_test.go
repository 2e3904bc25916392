package solana

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

// testBlockhash is a valid 32-byte base58 blockhash.
var testBlockhash = base58.Encode(bytes.Repeat([]byte{9}, 32))

// testKeypair returns a deterministic keypair derived from n.
func testKeypair(t *testing.T, n byte) *Keypair {
	t.Helper()
	kp, err := NewKeypairFromSeed(bytes.Repeat([]byte{n}, ed25519.SeedSize))
	if err != nil {
		t.Fatalf("NewKeypairFromSeed: %v", err)
	}
	return kp
}

func TestParseKeypair_Base58(t *testing.T) {
	kp := testKeypair(t, 42)

	parsed, err := ParseKeypair(kp.SecretKey())
	if err != nil {
		t.Fatalf("ParseKeypair: %v", err)
	}
	if parsed.PublicKey() != kp.PublicKey() {
		t.Errorf("expected %s, got %s", kp.PublicKey(), parsed.PublicKey())
	}
}

func TestParseKeypair_JSONArray(t *testing.T) {
	kp := testKeypair(t, 7)
	raw, _ := base58.Decode(kp.SecretKey())

	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprint(b)
	}
	encoded := "[" + strings.Join(parts, ",") + "]\n"

	parsed, err := ParseKeypair(encoded)
	if err != nil {
		t.Fatalf("ParseKeypair: %v", err)
	}
	if parsed.PublicKey() != kp.PublicKey() {
		t.Errorf("expected %s, got %s", kp.PublicKey(), parsed.PublicKey())
	}
}

func TestParseKeypair_Invalid(t *testing.T) {
	kp := testKeypair(t, 3)
	raw, _ := base58.Decode(kp.SecretKey())

	mismatched := append([]byte(nil), raw...)
	mismatched[63] ^= 0xff

	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", "   "},
		{"not base58", "0OIl"},
		{"short", base58.Encode(raw[:32])},
		{"mismatched public half", base58.Encode(mismatched)},
		{"json out of range", "[256" + strings.Repeat(",1", 63) + "]"},
		{"json malformed", "[1,2,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKeypair(tt.encoded)
			if !errors.Is(err, ErrInvalidSecretKey) {
				t.Errorf("expected ErrInvalidSecretKey, got %v", err)
			}
		})
	}
}

func TestKeypair_SignVerify(t *testing.T) {
	kp := testKeypair(t, 5)
	msg := []byte("sweep")

	sig := kp.Sign(msg)
	if sig.IsZero() {
		t.Fatal("expected non-zero signature")
	}
	if !sig.Verify(kp.PublicKey(), msg) {
		t.Error("signature does not verify")
	}
	if sig.Verify(testKeypair(t, 6).PublicKey(), msg) {
		t.Error("signature verified under the wrong key")
	}
	if sig.Verify(kp.PublicKey(), []byte("other")) {
		t.Error("signature verified over the wrong message")
	}
}
