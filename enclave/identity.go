package enclave

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// EphemeralKeypair is the enclave's signing identity: one ed25519 keypair
// generated at startup, held only in process memory and gone at process exit.
// The private key is reachable solely through the signing operation.
type EphemeralKeypair struct {
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

// GenerateIdentity creates the process-lifetime keypair. It must run after
// the boot sequence has seeded the kernel entropy pool; the randomness of
// this key is only as strong as that seed. Failure is fatal: an unkeyed
// enclave must not serve requests.
func GenerateIdentity() (*EphemeralKeypair, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, Fatal(fmt.Errorf("failed to generate ephemeral keypair: %v", err))
	}
	return &EphemeralKeypair{public: public, private: private}, nil
}

// PublicKey returns the public half of the identity.
func (kp *EphemeralKeypair) PublicKey() ed25519.PublicKey {
	return kp.public
}

// PublicKeyHex returns the hex encoding of the public key for transport.
func (kp *EphemeralKeypair) PublicKeyHex() string {
	return hex.EncodeToString(kp.public)
}

// sign signs message with the private key. Concurrent use is safe: the key
// is never mutated after creation.
func (kp *EphemeralKeypair) sign(message []byte) []byte {
	return ed25519.Sign(kp.private, message)
}
