package verifier

import (
	"errors"
	"testing"
	"time"

	"tee-enclave/enclave"
)

type weatherPayload struct {
	Location    string `json:"location"`
	Temperature uint64 `json:"temperature"`
}

func signedFixture(t *testing.T) (*enclave.EphemeralKeypair, *enclave.SignedResponse[weatherPayload]) {
	t.Helper()
	kp, err := enclave.GenerateIdentity()
	if err != nil {
		t.Fatalf("Failed to generate identity: %v", err)
	}
	signed, err := enclave.ToSignedResponse(kp,
		weatherPayload{Location: "San Francisco", Temperature: 13},
		1744038900000, enclave.ScopeWeather)
	if err != nil {
		t.Fatalf("Failed to sign response: %v", err)
	}
	return kp, signed
}

func TestVerifyRoundTrip(t *testing.T) {
	kp, signed := signedFixture(t)
	if err := Verify(signed, kp.PublicKey()); err != nil {
		t.Errorf("Failed to verify a freshly signed response: %v", err)
	}
}

func TestVerifyTamperedData(t *testing.T) {
	kp, signed := signedFixture(t)
	signed.Response.Data.Temperature = 30

	if err := Verify(signed, kp.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature for tampered data, got %v", err)
	}
}

func TestVerifyTamperedIntent(t *testing.T) {
	kp, signed := signedFixture(t)
	// A signature produced for one scope must never verify under another.
	signed.Response.Intent = enclave.IntentScope(1)

	if err := Verify(signed, kp.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature for a re-scoped message, got %v", err)
	}
}

func TestVerifyTamperedTimestamp(t *testing.T) {
	kp, signed := signedFixture(t)
	signed.Response.TimestampMS++

	if err := Verify(signed, kp.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature for a shifted timestamp, got %v", err)
	}
}

func TestVerifyWrongKey(t *testing.T) {
	_, signed := signedFixture(t)
	other, err := enclave.GenerateIdentity()
	if err != nil {
		t.Fatalf("Failed to generate identity: %v", err)
	}

	if err := Verify(signed, other.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature under a different key, got %v", err)
	}
}

func TestVerifyMalformedSignature(t *testing.T) {
	kp, signed := signedFixture(t)
	signed.Signature = "not hex"

	if err := Verify(signed, kp.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Expected ErrBadSignature for malformed hex, got %v", err)
	}
}

func TestCheckFreshnessBoundary(t *testing.T) {
	const window = time.Hour
	now := time.UnixMilli(1744042500000)
	signedAt := now.Add(-window)

	cases := []struct {
		name        string
		timestampMS uint64
		stale       bool
	}{
		{"one millisecond under the window", uint64(signedAt.UnixMilli()) + 1, false},
		{"exactly at the window", uint64(signedAt.UnixMilli()), false},
		{"one millisecond over the window", uint64(signedAt.UnixMilli()) - 1, true},
		{"future timestamp", uint64(now.UnixMilli()) + 1000, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckFreshness(tc.timestampMS, now, window)
			if tc.stale && !errors.Is(err, ErrStale) {
				t.Errorf("Expected ErrStale, got %v", err)
			}
			if !tc.stale && err != nil {
				t.Errorf("Expected fresh, got %v", err)
			}
		})
	}
}
