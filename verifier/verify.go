// Package verifier contains the checks a relying party runs on a signed
// enclave response outside the enclave: re-deriving the canonical bytes and
// verifying the ed25519 signature, bounding freshness, and validating the
// attestation document that vouches for the signing key.
package verifier

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"tee-enclave/bcs"
	"tee-enclave/enclave"
)

var (
	// ErrBadSignature indicates the signature does not verify against the
	// given public key over the re-canonicalized response.
	ErrBadSignature = errors.New("signature verification failed")

	// ErrStale indicates the signed timestamp falls outside the caller's
	// freshness window.
	ErrStale = errors.New("signed response is stale")
)

// Verify re-canonicalizes the returned intent message and checks the
// signature against publicKey. A verifier that reconstructs the same
// {intent, timestamp_ms, data} independently gets byte-identical input, so
// any mismatch means either tampering or a different meaning.
func Verify[T any](signed *enclave.SignedResponse[T], publicKey ed25519.PublicKey) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: public key must be %d bytes, got %d",
			ErrBadSignature, ed25519.PublicKeySize, len(publicKey))
	}

	payload, err := bcs.Marshal(signed.Response)
	if err != nil {
		return fmt.Errorf("failed to re-canonicalize response: %v", err)
	}

	sig, err := hex.DecodeString(signed.Signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not valid hex: %v", ErrBadSignature, err)
	}

	if !ed25519.Verify(publicKey, payload, sig) {
		return ErrBadSignature
	}
	return nil
}

// CheckFreshness rejects a signed timestamp older than window at the given
// time. The bound is exclusive: a response exactly window old still passes,
// one millisecond older does not. Timestamps in the future pass; clock skew
// policy belongs to the caller.
func CheckFreshness(timestampMS uint64, now time.Time, window time.Duration) error {
	nowMS := uint64(now.UnixMilli())
	if nowMS <= timestampMS {
		return nil
	}
	if age := time.Duration(nowMS-timestampMS) * time.Millisecond; age > window {
		return fmt.Errorf("%w: signed %s ago, window is %s", ErrStale, age, window)
	}
	return nil
}
