package enclave

import (
	"fmt"

	"github.com/hf/nsm"
	"github.com/hf/nsm/request"
	"github.com/hf/nsm/response"
)

// Attest asks the Nitro Security Module for an attestation document binding
// the given public key to the running enclave image. User data and nonce are
// intentionally left empty: the public key is the only enclave-controlled
// data attested in this design.
//
// The NSM session is scoped to this call: opened immediately before the
// request and closed on every exit path. Concurrent callers therefore never
// contend on a shared handle, only briefly on the device itself. Retries, if
// any, belong to the caller.
func Attest(publicKey []byte) ([]byte, error) {
	sess, err := nsm.OpenDefaultSession()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open NSM session: %v", ErrHardwareUnavailable, err)
	}
	defer sess.Close()

	res, err := sess.Send(&request.Attestation{PublicKey: publicKey})
	if err != nil {
		return nil, fmt.Errorf("%w: attestation request failed: %v", ErrHardwareUnavailable, err)
	}

	return documentFromResponse(res)
}

// documentFromResponse validates that the NSM answered with the attestation
// variant and extracts the opaque signed document.
func documentFromResponse(res response.Response) ([]byte, error) {
	if res.Error != "" {
		return nil, fmt.Errorf("%w: nsm error: %s", ErrHardwareUnavailable, string(res.Error))
	}
	if res.Attestation == nil || res.Attestation.Document == nil {
		return nil, fmt.Errorf("%w: attestation response missing attestation document", ErrUnexpectedResponse)
	}
	return res.Attestation.Document, nil
}
