package boot

import (
	"fmt"
	"os"
	"os/exec"

	"tee-enclave/shared"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const (
	workloadShell  = "/sh"
	workloadScript = "/run.sh"
	sslCertFile    = "/ca-certificates.crt"
	workloadPath   = "/bin:/sbin:/usr/bin:/usr/sbin:/"
)

// Supervise spawns the single enclave workload, waits for it to exit, logs
// the exit status and restarts the platform. The enclave lifecycle is boot
// once, run one workload, restart; there is no restart-on-crash. This
// function does not return.
func Supervise(logger *shared.Logger) {
	cmd := exec.Command(workloadShell, workloadScript)
	cmd.Env = append(os.Environ(),
		"SSL_CERT_FILE="+sslCertFile,
		"PATH="+workloadPath,
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		logger.Critical("failed to start workload",
			zap.String("script", workloadScript), zap.Error(err))
		restart(logger)
		return
	}
	kmsg("spawned workload " + workloadScript)

	// Awaited to completion: no timeout, no forced termination.
	err := cmd.Wait()
	switch {
	case err == nil:
		logger.Info("workload exited", zap.String("status", cmd.ProcessState.String()))
	default:
		logger.Error("workload exited abnormally", zap.Error(err))
	}
	kmsg(fmt.Sprintf("workload exited: %v", cmd.ProcessState))

	restart(logger)
}

// restart flushes filesystems and reboots the platform.
func restart(logger *shared.Logger) {
	logger.Sync()
	unix.Sync()
	if err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART); err != nil {
		logger.Critical("reboot failed", zap.Error(err))
	}
}
