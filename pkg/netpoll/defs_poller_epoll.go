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

package netpoll

import (
	"golang.org/x/sys/unix"

	"github.com/panjf2000/bps/internal/math"
)

const exceptEvents = unix.EPOLLPRI | unix.EPOLLERR | unix.EPOLLHUP | unix.EPOLLRDHUP

func toEpoll(ev IOEvent) uint32 {
	var e uint32
	if ev&In != 0 {
		e |= unix.EPOLLIN
	}
	if ev&Out != 0 {
		e |= unix.EPOLLOUT
	}
	if ev&Except != 0 {
		e |= unix.EPOLLPRI | unix.EPOLLRDHUP
	}
	return e
}

// fromEpoll translates what epoll reported back into bits the caller asked for.
// EPOLLERR and EPOLLHUP are always reported by the kernel, they surface as Except
// when asked for, otherwise as In so that a reader notices the hang-up.
func fromEpoll(e uint32, interest IOEvent) IOEvent {
	var ev IOEvent
	if e&unix.EPOLLIN != 0 {
		ev |= In
	}
	if e&unix.EPOLLOUT != 0 {
		ev |= Out
	}
	if e&exceptEvents != 0 {
		if interest&Except != 0 {
			ev |= Except
		} else if e&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			ev |= In | Out
		}
	}
	return ev & interest
}

type eventList struct {
	size   int
	events []unix.EpollEvent
}

func newEventList(size int) *eventList {
	if size < MinPollEventsCap {
		size = MinPollEventsCap
	} else if size > MaxPollEventsCap {
		size = MaxPollEventsCap
	} else if !math.IsPowerOfTwo(size) {
		size = math.CeilToPowerOfTwo(size)
	}
	return &eventList{size, make([]unix.EpollEvent, size)}
}

func (el *eventList) expand() {
	if newSize := el.size << 1; newSize <= MaxPollEventsCap {
		el.size = newSize
		el.events = make([]unix.EpollEvent, newSize)
	}
}

func (el *eventList) shrink() {
	if newSize := el.size >> 1; newSize >= MinPollEventsCap {
		el.size = newSize
		el.events = make([]unix.EpollEvent, newSize)
	}
}
