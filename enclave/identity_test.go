package enclave

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"
)

func TestGenerateIdentity(t *testing.T) {
	kp := mustGenerateIdentity(t)

	if len(kp.PublicKey()) != ed25519.PublicKeySize {
		t.Errorf("Unexpected public key size: got %d, want %d", len(kp.PublicKey()), ed25519.PublicKeySize)
	}

	decoded, err := hex.DecodeString(kp.PublicKeyHex())
	if err != nil {
		t.Fatalf("PublicKeyHex is not valid hex: %v", err)
	}
	if string(decoded) != string(kp.PublicKey()) {
		t.Error("PublicKeyHex does not round-trip to the public key")
	}
}

func TestGenerateIdentityUnique(t *testing.T) {
	first := mustGenerateIdentity(t)
	second := mustGenerateIdentity(t)

	if first.PublicKeyHex() == second.PublicKeyHex() {
		t.Error("Two generated identities share a public key")
	}
}
