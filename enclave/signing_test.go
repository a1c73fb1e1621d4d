package enclave

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"tee-enclave/bcs"
)

type weatherPayload struct {
	Location    string `json:"location"`
	Temperature uint64 `json:"temperature"`
}

func mustGenerateIdentity(t *testing.T) *EphemeralKeypair {
	t.Helper()
	kp, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("Failed to generate identity: %v", err)
	}
	return kp
}

func TestToSignedResponseRoundTrip(t *testing.T) {
	kp := mustGenerateIdentity(t)

	payload := weatherPayload{Location: "San Francisco", Temperature: 13}
	signed, err := ToSignedResponse(kp, payload, 1744038900000, ScopeWeather)
	if err != nil {
		t.Fatalf("Failed to sign response: %v", err)
	}

	// A verifier re-canonicalizes the returned response independently and
	// checks the signature against the known public key.
	canonical, err := bcs.Marshal(signed.Response)
	if err != nil {
		t.Fatalf("Failed to re-canonicalize response: %v", err)
	}

	sig, err := hex.DecodeString(signed.Signature)
	if err != nil {
		t.Fatalf("Signature is not valid hex: %v", err)
	}

	if !ed25519.Verify(kp.PublicKey(), canonical, sig) {
		t.Error("Signature did not verify against re-canonicalized response")
	}
}

func TestSigningPayloadGoldenVector(t *testing.T) {
	msg := NewIntentMessage(weatherPayload{Location: "San Francisco", Temperature: 13}, 1744038900000, ScopeWeather)

	canonical, err := bcs.Marshal(msg)
	if err != nil {
		t.Fatalf("Failed to canonicalize: %v", err)
	}

	expected, _ := hex.DecodeString("0020b1d110960100000d53616e204672616e636973636f0d00000000000000")
	if !bytes.Equal(canonical, expected) {
		t.Errorf("Canonical bytes mismatch:\n got  %x\n want %x", canonical, expected)
	}
}

func TestScopeSeparation(t *testing.T) {
	payload := weatherPayload{Location: "San Francisco", Temperature: 13}

	// Two messages differing only in scope must canonicalize differently,
	// otherwise a signature for one meaning could stand in for another.
	first, err := bcs.Marshal(NewIntentMessage(payload, 1744038900000, ScopeWeather))
	if err != nil {
		t.Fatalf("Failed to canonicalize: %v", err)
	}
	second, err := bcs.Marshal(NewIntentMessage(payload, 1744038900000, IntentScope(1)))
	if err != nil {
		t.Fatalf("Failed to canonicalize: %v", err)
	}

	if bytes.Equal(first, second) {
		t.Error("Messages with distinct scopes canonicalized to identical bytes")
	}
}

func TestScopeTagsStayInSingleByteRange(t *testing.T) {
	// Above 127 a single-byte tag and a ULEB128 variant index diverge, so
	// every defined scope must stay below that bound.
	scopes := []IntentScope{ScopeWeather}
	for _, scope := range scopes {
		if scope > 127 {
			t.Errorf("Scope tag %d exceeds the single-byte encoding range", scope)
		}
	}
}

func TestToSignedResponsePropagatesEncodingFailure(t *testing.T) {
	kp := mustGenerateIdentity(t)

	// Variable-width ints have no canonical encoding; the failure must reach
	// the caller instead of producing a signature over partial data.
	type badPayload struct {
		Count int
	}
	if _, err := ToSignedResponse(kp, badPayload{Count: 1}, 1744038900000, ScopeWeather); err == nil {
		t.Error("Expected encoding error for unsupported payload type")
	}
}

func TestSignaturesFromDifferentScopesDoNotCrossVerify(t *testing.T) {
	kp := mustGenerateIdentity(t)
	payload := weatherPayload{Location: "Oslo", Temperature: 2}

	signed, err := ToSignedResponse(kp, payload, 1744038900000, ScopeWeather)
	if err != nil {
		t.Fatalf("Failed to sign response: %v", err)
	}
	sig, err := hex.DecodeString(signed.Signature)
	if err != nil {
		t.Fatalf("Signature is not valid hex: %v", err)
	}

	other, err := bcs.Marshal(NewIntentMessage(payload, 1744038900000, IntentScope(1)))
	if err != nil {
		t.Fatalf("Failed to canonicalize: %v", err)
	}
	if ed25519.Verify(kp.PublicKey(), other, sig) {
		t.Error("Signature verified against a message with a different scope")
	}
}
