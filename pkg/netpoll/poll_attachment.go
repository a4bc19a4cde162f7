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

package netpoll

const (
	// InitPollEventsCap represents the initial capacity of poller event-list.
	InitPollEventsCap = 32
	// MaxPollEventsCap is the maximum limitation of events that the poller can process.
	MaxPollEventsCap = 512
	// MinPollEventsCap is the minimum limitation of events that the poller can process.
	MinPollEventsCap = 8
	// MaxAsyncTasksAtOneTime is the maximum amount of queued tasks that one Wait round will run.
	MaxAsyncTasksAtOneTime = 256
)

// IOEvent is the bitmask of I/O conditions a file descriptor is watched for.
type IOEvent uint32

const (
	// In reports that the file descriptor is readable.
	In IOEvent = 1 << iota
	// Out reports that the file descriptor is writable.
	Out
	// Except reports an exceptional condition: priority data, hang-up or error.
	Except

	allEvents = In | Out | Except
)

// Valid reports whether ev carries at least one known bit and nothing else.
func (ev IOEvent) Valid() bool {
	return ev != 0 && ev&^allEvents == 0
}

func (ev IOEvent) String() string {
	if ev == 0 {
		return "none"
	}
	s := ""
	for _, b := range []struct {
		bit  IOEvent
		name string
	}{{In, "in"}, {Out, "out"}, {Except, "except"}} {
		if ev&b.bit != 0 {
			if s != "" {
				s += "|"
			}
			s += b.name
		}
	}
	return s
}

// PollEventHandler is called on the owner goroutine when a watched file descriptor is ready.
type PollEventHandler func(fd int, ev IOEvent) error

// PollAttachment binds a file descriptor to its callback.
type PollAttachment struct {
	FD       int
	Events   IOEvent
	Callback PollEventHandler
}
