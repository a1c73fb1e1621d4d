// Package boot brings the enclave from a bare kernel start to a state where
// user-space code can run with a working console and seeded randomness. It
// runs as PID 1: mount the fixed table of virtual filesystems, attach the
// standard streams to the console device, probe the platform hardware and
// feed the kernel entropy pool from the hardware RNG.
//
// Every step is independently fallible and non-fatal: a partially mounted
// filesystem is still preferable to a fully unbootable enclave, so failures
// are logged to the console and the sequence continues best-effort.
package boot

import (
	"sync"

	"tee-enclave/shared"

	"go.uber.org/zap"
)

var bootOnce sync.Once

// Boot runs the startup sequence. It must be called before any network-facing
// code and before any cryptographic key generation; the sequence never runs
// twice in the same process lifetime.
func Boot(logger *shared.Logger) {
	bootOnce.Do(func() {
		mountRootFS(logger)
		initConsole(logger)
		initPlatform(logger)

		seeded, err := SeedEntropy(entropySeedBytes)
		if err != nil {
			// Loud but non-fatal: downstream key generation is only as
			// strong as this seed.
			logger.Critical("failed to seed kernel entropy pool",
				zap.Int("seeded_bytes", seeded), zap.Error(err))
		} else {
			logger.Info("seeded kernel entropy pool", zap.Int("bytes", seeded))
		}

		kmsg("enclave booted")
	})
}
