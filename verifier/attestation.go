package verifier

import (
	"bytes"
	"fmt"

	nitro "github.com/anjuna-security/go-nitro-attestation/verifier"
)

// AttestationInfo is the subset of a validated attestation document relying
// parties need: the ephemeral public key the enclave bound into it and the
// measurement identifying the enclave image.
type AttestationInfo struct {
	PublicKey []byte
	PCR0      string
}

// ParseAttestation validates the document's signature chain against the AWS
// Nitro root of trust and extracts the embedded public key and PCR0.
func ParseAttestation(doc []byte) (*AttestationInfo, error) {
	sr, err := nitro.NewSignedAttestationReport(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attestation document: %v", err)
	}

	if err := nitro.Validate(sr, nil); err != nil {
		return nil, fmt.Errorf("attestation validation failed: %v", err)
	}

	if len(sr.Document.UserPublicKey) == 0 {
		return nil, fmt.Errorf("attestation document has no embedded public key")
	}
	pcr0 := sr.Document.PCRs[0]
	if pcr0 == nil {
		return nil, fmt.Errorf("PCR0 not found in attestation document")
	}

	return &AttestationInfo{
		PublicKey: sr.Document.UserPublicKey,
		PCR0:      fmt.Sprintf("%x", pcr0),
	}, nil
}
