package boot

import (
	"tee-enclave/shared"

	"github.com/hf/nsm"
	"go.uber.org/zap"
)

// initPlatform probes the Nitro Security Module by opening and immediately
// closing a session. A missing device means attestation and hardware entropy
// will be unavailable, which is worth knowing before anything depends on it.
func initPlatform(logger *shared.Logger) {
	sess, err := nsm.OpenDefaultSession()
	if err != nil {
		logger.Error("NSM device unavailable", zap.Error(err))
		return
	}
	sess.Close()
	logger.InfoIf("NSM device present")
}
