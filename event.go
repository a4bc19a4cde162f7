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

package bps

import (
	"fmt"
	"sync/atomic"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

// ChannelID identifies a channel, ids are unique within the process.
type ChannelID int32

// CompletionFunc is called once the channel that delivered ev no longer needs it:
// on the next GetEvent of that channel or when the channel is destroyed.
type CompletionFunc func(ev *Event)

const (
	eventNew int32 = iota
	eventQueued
	eventDelivered
	eventReleased
)

// Event is a domain-tagged, code-tagged message with an opaque payload.
//
// An event returned by GetEvent is owned by the channel that delivered it and stays
// valid until the next GetEvent on that channel, unless it's handed over to another
// channel with PushEvent or ChannelPushEvent.
type Event struct {
	domain     int
	code       uint16
	payload    any
	completion CompletionFunc

	state atomic.Int32
	owner atomic.Int32
}

// NewEvent creates an event for a registered domain.
func NewEvent(domain int, code uint16, payload any, completion CompletionFunc) (*Event, error) {
	if !IsRegisteredDomain(domain) {
		return nil, errorx.ErrInvalidDomain
	}
	return &Event{domain: domain, code: code, payload: payload, completion: completion}, nil
}

// Domain returns the domain the event belongs to.
func (ev *Event) Domain() int {
	return ev.domain
}

// Code returns the domain-specific event code.
func (ev *Event) Code() uint16 {
	return ev.code
}

// Payload returns the data attached to the event.
func (ev *Event) Payload() any {
	return ev.payload
}

func (ev *Event) String() string {
	return fmt.Sprintf("event{domain: %d, code: %#x}", ev.domain, ev.code)
}

// enqueue claims ev for the channel id, an event can sit in one queue at a time.
func (ev *Event) enqueue(id ChannelID) error {
	for {
		switch st := ev.state.Load(); st {
		case eventQueued:
			return errorx.ErrEventQueued
		case eventReleased:
			return errorx.ErrEventReleased
		default:
			if ev.state.CompareAndSwap(st, eventQueued) {
				ev.owner.Store(int32(id))
				return nil
			}
		}
	}
}

func (ev *Event) deliver() {
	ev.state.Store(eventDelivered)
}

// release runs the completion function if the channel id still owns ev and ev is
// still in state from. A delivered event that was pushed again has left the
// delivered state, its completion waits for the next delivery.
func (ev *Event) release(id ChannelID, from int32) {
	if ev.owner.Load() != int32(id) {
		return
	}
	if ev.state.CompareAndSwap(from, eventReleased) && ev.completion != nil {
		ev.completion(ev)
	}
}
