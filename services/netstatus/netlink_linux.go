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

package netstatus

import (
	"context"
	"os"

	"golang.org/x/sys/unix"

	"github.com/panjf2000/bps/pkg/logging"
)

const watchInterval = 250 // milliseconds

// Watch follows the link and address notifications of the kernel and refreshes
// the status after each batch of them, until ctx is done.
func (h *Host) Watch(ctx context.Context) error {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_RAW|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_ROUTE)
	if err != nil {
		return os.NewSyscallError("socket", err)
	}
	defer unix.Close(fd) //nolint:errcheck

	sa := &unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: unix.RTMGRP_LINK | unix.RTMGRP_IPV4_IFADDR | unix.RTMGRP_IPV6_IFADDR,
	}
	if err = unix.Bind(fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}

	logging.Error(h.SetStatus(Probe()))
	buf := make([]byte, os.Getpagesize())
	pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := unix.Poll(pfd, watchInterval)
		if err == unix.EINTR || n == 0 {
			continue
		}
		if err != nil {
			return os.NewSyscallError("poll", err)
		}
		if err = drain(fd, buf); err != nil {
			return err
		}
		logging.Error(h.SetStatus(Probe()))
	}
}

func drain(fd int, buf []byte) error {
	for {
		_, _, err := unix.Recvfrom(fd, buf, 0)
		switch err {
		case nil, unix.EINTR:
		case unix.EAGAIN:
			return nil
		case unix.ENOBUFS:
			// The kernel dropped notifications, the next probe catches up anyway.
			return nil
		default:
			return os.NewSyscallError("recvfrom", err)
		}
	}
}
