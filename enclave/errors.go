package enclave

import (
	"errors"
	"fmt"
)

// Sentinel errors let callers distinguish "hardware unavailable" from
// "internal encoding failure" without parsing messages.
var (
	// ErrHardwareUnavailable indicates the NSM device could not be reached
	// or reported an error for the request.
	ErrHardwareUnavailable = errors.New("attestation hardware unavailable")

	// ErrUnexpectedResponse indicates the NSM device answered with something
	// other than an attestation document, so the trust chain could not be
	// established for this request.
	ErrUnexpectedResponse = errors.New("unexpected attestation response")

	// ErrEncoding indicates the canonical encoding of a signing payload
	// failed. A response must never be signed over partial bytes.
	ErrEncoding = errors.New("canonical encoding failed")
)

// FatalError marks failures that invalidate the whole process rather than a
// single request: an enclave without a valid ephemeral key cannot provide its
// core guarantee. Callers must abort startup instead of serving.
type FatalError struct {
	err error
}

// Fatal wraps err as a startup-aborting failure.
func Fatal(err error) error {
	return &FatalError{err: err}
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.err)
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// IsFatal reports whether err is a startup-aborting failure.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
