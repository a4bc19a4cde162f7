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
Package bps is an event-driven platform-services runtime.

Every OS thread that calls Initialize owns a default channel: an event queue,
a set of watched file descriptors and sigevents, and a table of per-domain
data. Services register a domain with RegisterDomain, attach their
notification sources to the active channel of the calling thread, and turn
what they read into events. The application drains them with GetEvent:

	if err := bps.Initialize(); err != nil {
		log.Fatal(err)
	}
	defer bps.Shutdown() //nolint:errcheck

	if err := navigator.RequestEvents(0); err != nil {
		log.Fatal(err)
	}

	for {
		ev, err := bps.GetEvent(-1)
		if err != nil {
			log.Fatal(err)
		}
		if ev.Domain() == navigator.GetDomain() && ev.Code() == navigator.Exit {
			break
		}
	}

Initialize locks the calling goroutine to its OS thread until the matching
Shutdown. A channel must only be used from the thread that created it, except
through ChannelPushEvent, ChannelExec and Sigevent.Deliver which are safe to
call from any goroutine.
*/
package bps
