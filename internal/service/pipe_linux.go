// Copyright (c) 2026 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build linux

package service

import (
	"os"

	"golang.org/x/sys/unix"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

func openPipe() (r, w int, err error) {
	var p [2]int
	if err = unix.Pipe2(p[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return -1, -1, os.NewSyscallError("pipe2", err)
	}
	return p[0], p[1], nil
}

// writeFrame never blocks, a frame no larger than PIPE_BUF is written whole or not at all.
func writeFrame(fd int, b []byte) error {
	for {
		_, err := unix.Write(fd, b)
		switch err {
		case nil:
			return nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return errorx.ErrSubscriberBusy
		default:
			return os.NewSyscallError("write", err)
		}
	}
}

func closeFD(fd int) error {
	return os.NewSyscallError("close", unix.Close(fd))
}

// fill feeds the decoder until the pipe is drained.
func (s *Subscription) fill() (eof bool, err error) {
	for {
		n, err := unix.Read(s.rfd, s.buf)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return false, nil
		case err != nil:
			return false, os.NewSyscallError("read", err)
		case n == 0:
			return true, nil
		}
		s.dec.Feed(s.buf[:n])
	}
}
