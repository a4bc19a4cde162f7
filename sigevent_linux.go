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

package bps

import (
	"sync/atomic"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

// SigeventHandler is called on the owner thread of the channel, from inside GetEvent,
// once per delivery of se. A non-nil error makes that GetEvent fail with it.
type SigeventHandler func(se *Sigevent, data any) error

// Sigevent is a notification source for services that have no file descriptor to
// poll. Any goroutine may Deliver it, the handler then runs on the thread that owns
// the channel the sigevent was added to.
type Sigevent struct {
	c          *channel
	handler    SigeventHandler
	data       any
	registered atomic.Bool
}

// AddSigeventHandler creates a sigevent on the active channel.
func AddSigeventHandler(handler SigeventHandler, data any) (*Sigevent, error) {
	if handler == nil {
		return nil, errorx.ErrNilHandler
	}
	c, err := activeChannel()
	if err != nil {
		return nil, err
	}
	se := &Sigevent{c: c, handler: handler, data: data}
	se.registered.Store(true)
	c.sigevents[se] = struct{}{}
	return se, nil
}

// RemoveSigeventHandler removes se from the active channel, deliveries that are
// still pending are dropped.
func RemoveSigeventHandler(se *Sigevent) error {
	c, err := activeChannel()
	if err != nil {
		return err
	}
	if se == nil || se.c != c {
		return errorx.ErrSigeventNotRegistered
	}
	if _, ok := c.sigevents[se]; !ok {
		return errorx.ErrSigeventNotRegistered
	}
	delete(c.sigevents, se)
	se.registered.Store(false)
	return nil
}

// Deliver notifies the channel of se, it's safe to call from any goroutine.
func (se *Sigevent) Deliver() error {
	return se.c.alive(func() error {
		if !se.registered.Load() {
			return errorx.ErrSigeventNotRegistered
		}
		return se.c.poller.Trigger(se.run, nil)
	})
}

// Channel returns the channel se was added to.
func (se *Sigevent) Channel() ChannelID {
	return se.c.id
}

func (se *Sigevent) run(any) error {
	if !se.registered.Load() {
		return nil
	}
	return se.handler(se, se.data)
}
