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

// Package errors defines common errors for bps.
package errors

import "errors"

var (
	// ErrNotInitialized occurs when calling into bps on a thread that has not called Initialize.
	ErrNotInitialized = errors.New("bps: not initialized on this thread")
	// ErrUnsupportedPlatform occurs when bps runs on a platform without epoll/eventfd.
	ErrUnsupportedPlatform = errors.New("bps: unsupported platform")
	// ErrWrongThread occurs when a channel is touched from a thread other than its owner.
	ErrWrongThread = errors.New("bps: channel is owned by another thread")
	// ErrInvalidChannel occurs when the channel id doesn't refer to a live channel.
	ErrInvalidChannel = errors.New("bps: invalid channel")
	// ErrDefaultChannel occurs when trying to destroy the default channel of a thread directly.
	ErrDefaultChannel = errors.New("bps: the default channel is destroyed only by the final Shutdown")
	// ErrChannelDestroying occurs when a destroy handler re-enters the channel being destroyed.
	ErrChannelDestroying = errors.New("bps: channel is being destroyed")
	// ErrChannelBusy occurs when destroying a channel from inside its own event dispatch.
	ErrChannelBusy = errors.New("bps: channel is dispatching events")
	// ErrInShutdown occurs when a shutdown handler calls back into bps on the thread being shut down.
	ErrInShutdown = errors.New("bps: thread is in shutdown")
	// ErrInvalidDomain occurs when an event or a piece of domain data uses an unregistered domain.
	ErrInvalidDomain = errors.New("bps: invalid domain")
	// ErrDomainsExhausted occurs when no more domain ids can be handed out.
	ErrDomainsExhausted = errors.New("bps: domain ids exhausted")
	// ErrNilEvent occurs when a nil event is pushed.
	ErrNilEvent = errors.New("bps: nil event is not allowed")
	// ErrEventQueued occurs when pushing an event that sits in a queue already.
	ErrEventQueued = errors.New("bps: event is already queued on a channel")
	// ErrEventReleased occurs when pushing an event whose completion has already run.
	ErrEventReleased = errors.New("bps: event has been released")
	// ErrNilHandler occurs when registering a nil callback.
	ErrNilHandler = errors.New("bps: nil handler is not allowed")
	// ErrInvalidFD occurs when registering a negative file descriptor.
	ErrInvalidFD = errors.New("bps: invalid file descriptor")
	// ErrInvalidIOEvents occurs when the I/O event mask has no known bit set.
	ErrInvalidIOEvents = errors.New("bps: invalid I/O events")
	// ErrFDAlreadyRegistered occurs when adding a file descriptor twice to the same channel.
	ErrFDAlreadyRegistered = errors.New("bps: file descriptor is already registered")
	// ErrFDNotRegistered occurs when removing a file descriptor that was never added.
	ErrFDNotRegistered = errors.New("bps: file descriptor is not registered")
	// ErrSigeventNotRegistered occurs when removing or delivering a sigevent that is not registered.
	ErrSigeventNotRegistered = errors.New("bps: sigevent is not registered")
	// ErrNotRequested occurs when a service call requires a prior RequestEvents on the active channel.
	ErrNotRequested = errors.New("bps: events were not requested on the active channel")
	// ErrAlreadyRequested occurs when requesting the events of a service twice on one channel.
	ErrAlreadyRequested = errors.New("bps: events are already requested on the active channel")
	// ErrInvalidHandle occurs when freeing or using a handle that was not handed out, or was freed already.
	ErrInvalidHandle = errors.New("bps: invalid or already freed handle")
	// ErrInvalidEvent occurs when an accessor is handed an event of another service.
	ErrInvalidEvent = errors.New("bps: event does not belong to this service")
	// ErrMissingAttribute occurs when an event lacks the attribute an accessor reads.
	ErrMissingAttribute = errors.New("bps: attribute is missing from event")
	// ErrFrameTooLarge occurs when an encoded service message exceeds the atomic pipe write size.
	ErrFrameTooLarge = errors.New("bps: frame is too large")
	// ErrMalformedFrame occurs when a service message cannot be decoded.
	ErrMalformedFrame = errors.New("bps: malformed frame")
	// ErrSubscriberBusy occurs when a subscriber pipe is full and a message was dropped.
	ErrSubscriberBusy = errors.New("bps: subscriber is not draining its events")
	// ErrInvalidArgument occurs when a service call is handed an argument it cannot use.
	ErrInvalidArgument = errors.New("bps: invalid argument")
)
