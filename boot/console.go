package boot

import (
	"fmt"
	"os"

	"tee-enclave/shared"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

const consoleDevice = "/dev/console"

// initConsole attaches stdin, stdout and stderr to the platform console so
// diagnostic output stays observable even though no terminal is attached.
func initConsole(logger *shared.Logger) {
	fd, err := unix.Open(consoleDevice, unix.O_RDWR, 0)
	if err != nil {
		logger.Error("failed to open console device",
			zap.String("device", consoleDevice), zap.Error(err))
		return
	}

	for _, std := range []int{0, 1, 2} {
		if fd == std {
			// As PID 1 with no inherited descriptors, the console may open
			// directly onto a standard fd.
			continue
		}
		if err := unix.Dup3(fd, std, 0); err != nil {
			logger.Error("failed to redirect standard stream",
				zap.Int("fd", std), zap.Error(err))
		}
	}
	if fd > 2 {
		unix.Close(fd)
	}
}

// kmsg mirrors a boot milestone to the kernel log so it shows up in the
// host-visible console output. Falls back to stdout when /dev/kmsg is not
// available (e.g. running outside the enclave).
func kmsg(msg string) {
	f, err := os.OpenFile("/dev/kmsg", os.O_WRONLY, 0)
	if err != nil {
		fmt.Println(msg)
		return
	}
	defer f.Close()
	fmt.Fprintln(f, msg)
}
