//go:build unix

package mmio

import (
	"os"

	"golang.org/x/sys/unix"
)

// termBackend talks directly to the host terminal in raw mode, so
// keystrokes reach the guest one byte at a time instead of being
// line-buffered by the host tty driver. This mirrors the build-tagged,
// x/sys/unix-backed platform file pattern used elsewhere in the reference
// pack for host OS interaction (inotify watching on Unix, one file per
// platform).
type termBackend struct {
	fd       int
	saved    unix.Termios
	restored bool
}

// NewTermUART puts the controlling terminal into raw mode and returns a
// UART backed directly by stdin/stdout. Only available on Unix build
// targets; see uart_other.go for the fallback.
func NewTermUART(name string) (*UART, error) {
	fd := int(os.Stdin.Fd())
	saved, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	raw := *saved
	raw.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG
	raw.Iflag &^= unix.IXON | unix.ICRNL
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, err
	}
	return NewUART(name, &termBackend{fd: fd, saved: *saved}), nil
}

func (b *termBackend) TryRead() (byte, bool, error) {
	var c [1]byte
	n, err := unix.Read(b.fd, c[:])
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, false, nil
		}
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	return c[0], true, nil
}

func (b *termBackend) TryWrite(c byte) (bool, error) {
	_, err := unix.Write(int(os.Stdout.Fd()), []byte{c})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *termBackend) Close() error {
	if b.restored {
		return nil
	}
	b.restored = true
	return unix.IoctlSetTermios(b.fd, ioctlSetTermios, &b.saved)
}
