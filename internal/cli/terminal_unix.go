//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// disableEcho turns off terminal echo on stdin until restore is called.
func disableEcho(stdin *os.File) (func(), error) {
	fd := int(stdin.Fd())
	state, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("stdin is not a terminal: %w", err)
	}

	original := *state
	silent := original
	silent.Lflag &^= unix.ECHO
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &silent); err != nil {
		return nil, fmt.Errorf("disable echo: %w", err)
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, ioctlSetTermios, &original)
	}, nil
}
