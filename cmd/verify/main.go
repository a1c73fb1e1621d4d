// Command verify checks a saved signed response outside the enclave: it
// re-derives the canonical signing bytes, verifies the ed25519 signature
// against either a given public key or the one embedded in an attestation
// document, and optionally applies a freshness window.
//
// Usage:
//
//	verify -response signed.json [-attestation doc.hex] [-public-key <hex>] [-max-age 1h]
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"tee-enclave/enclave"
	"tee-enclave/verifier"
)

// weatherPayload matches the enclave's signed weather data. Verifying a
// different payload type means re-declaring its shape here; the canonical
// encoding depends on it.
type weatherPayload struct {
	Location    string `json:"location"`
	Temperature uint64 `json:"temperature"`
}

func main() {
	responsePath := flag.String("response", "", "path to the signed response JSON")
	attestationPath := flag.String("attestation", "", "path to the hex-encoded attestation document (optional)")
	publicKeyHex := flag.String("public-key", "", "hex-encoded ed25519 public key (optional when -attestation is given)")
	maxAge := flag.Duration("max-age", 0, "reject responses older than this (0 disables)")
	flag.Parse()

	if *responsePath == "" {
		fail("missing -response")
	}

	raw, err := os.ReadFile(*responsePath)
	if err != nil {
		fail("failed to read response: %v", err)
	}
	var signed enclave.SignedResponse[weatherPayload]
	if err := json.Unmarshal(raw, &signed); err != nil {
		fail("failed to parse response: %v", err)
	}

	publicKey, err := resolvePublicKey(*publicKeyHex, *attestationPath)
	if err != nil {
		fail("%v", err)
	}

	if err := verifier.Verify(&signed, publicKey); err != nil {
		fail("verification failed: %v", err)
	}
	fmt.Println("signature: ok")

	if *maxAge > 0 {
		if err := verifier.CheckFreshness(signed.Response.TimestampMS, time.Now(), *maxAge); err != nil {
			fail("freshness check failed: %v", err)
		}
		fmt.Printf("freshness: within %s\n", *maxAge)
	}

	fmt.Printf("intent: %d\ntimestamp_ms: %d\n", signed.Response.Intent, signed.Response.TimestampMS)
}

// resolvePublicKey prefers an explicit key; otherwise it validates the
// attestation document and uses the key the enclave bound into it.
func resolvePublicKey(publicKeyHex, attestationPath string) (ed25519.PublicKey, error) {
	if publicKeyHex != "" {
		key, err := hex.DecodeString(publicKeyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid -public-key: %v", err)
		}
		return key, nil
	}
	if attestationPath == "" {
		return nil, fmt.Errorf("need -public-key or -attestation")
	}

	raw, err := os.ReadFile(attestationPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read attestation document: %v", err)
	}
	doc, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("attestation document is not valid hex: %v", err)
	}

	info, err := verifier.ParseAttestation(doc)
	if err != nil {
		return nil, err
	}
	fmt.Printf("attestation: ok\npcr0: %s\n", info.PCR0)
	return info.PublicKey, nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
