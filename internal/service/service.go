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

// Package service holds the plumbing shared by the platform services: a lazily
// registered domain, the pipe hub the platform side publishes through and the
// attachment that turns incoming frames into events on a channel.
package service

import (
	"sync"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

// Domain is the domain id of a service, registered on first use.
type Domain struct {
	once sync.Once
	id   int
	err  error
}

// ID returns the domain id, registering it the first time.
func (d *Domain) ID() (int, error) {
	d.once.Do(func() {
		d.id, d.err = bps.RegisterDomain()
	})
	return d.id, d.err
}

// Get is ID without the error, -1 means that no domain could be registered.
func (d *Domain) Get() int {
	id, err := d.ID()
	if err != nil {
		return -1
	}
	return id
}

// Source is a readable file descriptor that yields service messages.
type Source interface {
	// FD returns the descriptor to watch for input.
	FD() int
	// Read drains what is available without blocking, io.EOF tells that the
	// platform side went away after the returned messages.
	Read() ([]*wire.Message, error)
	// Close releases the source.
	Close() error
}

// Message returns the payload of ev after checking that ev belongs to domain.
func Message(ev *bps.Event, domain int) (*wire.Message, error) {
	if ev == nil {
		return nil, errorx.ErrNilEvent
	}
	if ev.Domain() != domain {
		return nil, errorx.ErrInvalidEvent
	}
	m, ok := ev.Payload().(*wire.Message)
	if !ok {
		return nil, errorx.ErrInvalidEvent
	}
	return m, nil
}

// Accepts reports whether a message with code passes flags, zero flags accept every code.
func Accepts(flags uint32, code uint16) bool {
	return flags == 0 || (code < 32 && flags&(1<<code) != 0)
}
