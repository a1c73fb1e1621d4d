package enclave

import (
	"encoding/hex"
	"fmt"

	"tee-enclave/bcs"
)

// IntentScope tags the semantic purpose of a signed message so a signature
// produced for one meaning can never be replayed as another. Discriminants
// are part of the verifier contract: append new scopes, never renumber
// existing ones, and keep tags below 128 — the scope encodes as a single
// byte, which coincides with a ULEB128 enum variant index only in that range.
type IntentScope uint8

const (
	// ScopeWeather covers signed weather lookups.
	ScopeWeather IntentScope = 0
)

// IntentMessage is the exact structure that gets canonically encoded and
// signed. Field order is part of the wire contract.
type IntentMessage[T any] struct {
	Intent      IntentScope `json:"intent"`
	TimestampMS uint64      `json:"timestamp_ms"`
	Data        T           `json:"data"`
}

// NewIntentMessage builds the signed unit from a payload, its timestamp and
// the scope it is meant for.
func NewIntentMessage[T any](data T, timestampMS uint64, intent IntentScope) IntentMessage[T] {
	return IntentMessage[T]{
		Intent:      intent,
		TimestampMS: timestampMS,
		Data:        data,
	}
}

// SignedResponse pairs an intent message with the hex-encoded signature over
// its canonical bytes. It is immutable once constructed.
type SignedResponse[T any] struct {
	Response  IntentMessage[T] `json:"response"`
	Signature string           `json:"signature"`
}

// ProcessDataRequest is the envelope callers use to submit a payload.
type ProcessDataRequest[T any] struct {
	Payload T `json:"payload"`
}

// ToSignedResponse canonicalizes {intent, timestamp_ms, data} and signs the
// resulting bytes with the ephemeral key. An encoding failure propagates to
// the caller; nothing is ever signed over partial bytes.
func ToSignedResponse[T any](kp *EphemeralKeypair, data T, timestampMS uint64, intent IntentScope) (*SignedResponse[T], error) {
	msg := NewIntentMessage(data, timestampMS, intent)

	payload, err := bcs.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return &SignedResponse[T]{
		Response:  msg,
		Signature: hex.EncodeToString(kp.sign(payload)),
	}, nil
}
