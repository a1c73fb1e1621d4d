// Command enclave-init is PID 1 inside the enclave image. It runs the boot
// sequence, then supervises the single workload process and restarts the
// platform when it exits.
package main

import (
	"log"

	"tee-enclave/boot"
	"tee-enclave/shared"
)

func main() {
	logger, err := shared.NewLogger(shared.LoggerConfig{ServiceName: "enclave-init"})
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	boot.Boot(logger)

	// Does not return: waits for the workload, then reboots.
	boot.Supervise(logger)
}
