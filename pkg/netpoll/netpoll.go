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

/*
Package netpoll is the I/O multiplexer behind every bps channel.

A Poller wraps one epoll instance plus an eventfd. The goroutine that owns the
Poller calls Wait to run a single round of event dispatch: readiness of every
registered file descriptor is reported to its PollAttachment callback, and the
tasks queued by Trigger from any goroutine are run on the owner:

	poller, err := netpoll.OpenPoller(netpoll.InitPollEventsCap)
	if err != nil {
		// handle error
	}
	defer poller.Close()

	pa := &netpoll.PollAttachment{FD: fd, Callback: func(fd int, ev netpoll.IOEvent) error {
		// read from fd
		return nil
	}}
	if err := poller.Add(pa, netpoll.In); err != nil {
		// handle error
	}

	for {
		if err := poller.Wait(-1); err != nil {
			// handle error
		}
	}

Trigger and Wakeup are the only methods safe to call from goroutines other
than the owner.
*/
package netpoll
