package boot

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/hf/nsm"
	"golang.org/x/sys/unix"
)

const (
	// entropySeedBytes is how much hardware entropy the boot sequence feeds
	// into the kernel pool before any key generation happens.
	entropySeedBytes = 4096

	// entropyChunkSize matches the NSM GetRandom response limit.
	entropyChunkSize = 256
)

// entropyPool receives entropy and credits it to the kernel's estimate.
type entropyPool interface {
	add(data []byte) error
}

// SeedEntropy draws want bytes from the NSM hardware RNG and credits them to
// the kernel randomness pool. It returns how many bytes were actually seeded,
// which is less than want only on error.
func SeedEntropy(want int) (int, error) {
	sess, err := nsm.OpenDefaultSession()
	if err != nil {
		return 0, fmt.Errorf("failed to open NSM session: %v", err)
	}
	defer sess.Close()

	pool, err := openKernelPool()
	if err != nil {
		return 0, err
	}
	defer pool.close()

	return seedEntropy(want, sess, pool)
}

// seedEntropy copies want bytes from source into pool in chunks no larger
// than the hardware RNG can return per request.
func seedEntropy(want int, source io.Reader, pool entropyPool) (int, error) {
	buf := make([]byte, entropyChunkSize)
	seeded := 0
	for seeded < want {
		chunk := buf[:min(entropyChunkSize, want-seeded)]
		if _, err := io.ReadFull(source, chunk); err != nil {
			return seeded, fmt.Errorf("entropy source read failed after %d bytes: %v", seeded, err)
		}
		if err := pool.add(chunk); err != nil {
			return seeded, fmt.Errorf("failed to credit entropy after %d bytes: %v", seeded, err)
		}
		seeded += len(chunk)
	}
	return seeded, nil
}

// kernelPool credits entropy through the RNDADDENTROPY ioctl on /dev/random,
// which both mixes the bytes in and raises the kernel's entropy estimate
// (plain writes to /dev/random mix without crediting).
type kernelPool struct {
	f *os.File
}

func openKernelPool() (*kernelPool, error) {
	f, err := os.OpenFile("/dev/random", os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/random: %v", err)
	}
	return &kernelPool{f: f}, nil
}

func (p *kernelPool) add(data []byte) error {
	// struct rand_pool_info: entropy count in bits, buffer size in bytes,
	// then the entropy itself.
	buf := make([]byte, 8+len(data))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(data)*8))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(data)))
	copy(buf[8:], data)

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, p.f.Fd(),
		uintptr(unix.RNDADDENTROPY), uintptr(unsafe.Pointer(&buf[0])))
	if errno != 0 {
		return fmt.Errorf("RNDADDENTROPY failed: %v", errno)
	}
	return nil
}

func (p *kernelPool) close() error {
	return p.f.Close()
}
