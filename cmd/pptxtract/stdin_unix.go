//go:build unix

package main

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// stdinWait bounds how long a pipe may stay silent before it is treated as
// carrying no input.
const stdinWait = 50 // milliseconds

// inputPending reports whether f can be read without blocking: data is
// buffered, or the writer has closed the pipe.
func inputPending(f *os.File) bool {
	fds := []unix.PollFd{{Fd: int32(f.Fd()), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, stdinWait)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		return err == nil && n > 0 && fds[0].Revents&(unix.POLLIN|unix.POLLHUP) != 0
	}
}
