package boot

import (
	"fmt"
	"os"

	"tee-enclave/shared"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// MountSpec describes one virtual filesystem to mount during boot.
type MountSpec struct {
	Source  string
	Target  string
	FSType  string
	Flags   uintptr
	Options string
}

const (
	noSUIDExec    = unix.MS_NOSUID | unix.MS_NOEXEC
	noDevSUIDExec = unix.MS_NODEV | unix.MS_NOSUID | unix.MS_NOEXEC
)

// mountTable is the fixed, ordered set of filesystems a user-space process
// needs. Order matters: a target is always listed after every mount point it
// nests under (/dev/pts after /dev, the cgroup root after /sys).
var mountTable = []MountSpec{
	{"devtmpfs", "/dev", "devtmpfs", noSUIDExec, "mode=0755"},
	{"devpts", "/dev/pts", "devpts", noSUIDExec, ""},
	{"shm", "/dev/shm", "tmpfs", noDevSUIDExec, "mode=0755"},
	{"proc", "/proc", "proc", noDevSUIDExec, "hidepid=2"},
	{"tmpfs", "/run", "tmpfs", noDevSUIDExec, "mode=0755"},
	{"tmpfs", "/tmp", "tmpfs", noDevSUIDExec, ""},
	{"sysfs", "/sys", "sysfs", noDevSUIDExec, ""},
	{"cgroup_root", "/sys/fs/cgroup", "tmpfs", noDevSUIDExec, "mode=0755"},
}

// mountRootFS walks the mount table in order. A failed entry is logged and
// skipped; later entries still get their chance.
func mountRootFS(logger *shared.Logger) {
	for _, spec := range mountTable {
		if err := mountOne(spec); err != nil {
			logger.Error("boot mount failed",
				zap.String("target", spec.Target), zap.Error(err))
			continue
		}
		logger.InfoIf("mounted filesystem",
			zap.String("target", spec.Target), zap.String("fstype", spec.FSType))
	}
}

// mountOne creates the target directory if it is absent, then mounts.
func mountOne(spec MountSpec) error {
	if err := os.MkdirAll(spec.Target, 0o755); err != nil {
		return fmt.Errorf("failed to create mount point %s: %v", spec.Target, err)
	}
	if err := unix.Mount(spec.Source, spec.Target, spec.FSType, spec.Flags, spec.Options); err != nil {
		return fmt.Errorf("failed to mount %s on %s: %v", spec.FSType, spec.Target, err)
	}
	return nil
}
