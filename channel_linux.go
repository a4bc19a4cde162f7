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
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"

	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
	"github.com/panjf2000/bps/pkg/netpoll"
)

// IOEvent is the set of I/O conditions a file descriptor is watched for.
type IOEvent = netpoll.IOEvent

const (
	// IOInput reports that the file descriptor is readable.
	IOInput = netpoll.In
	// IOOutput reports that the file descriptor is writable.
	IOOutput = netpoll.Out
	// IOExcept reports an exceptional condition on the file descriptor.
	IOExcept = netpoll.Except
)

// IOHandler is called on the owner thread, from inside GetEvent, when fd is ready.
// A non-nil error makes that GetEvent fail with it.
type IOHandler func(fd int, events IOEvent, data any) error

// ExecFunc runs on the owner thread of a channel, scheduled by ChannelExec.
type ExecFunc func(data any) error

// ChannelDestroyHandler is called once, when the channel it was registered on is destroyed.
type ChannelDestroyHandler func(data any)

type destroyEntry struct {
	fn   ChannelDestroyHandler
	data any
}

const (
	channelAlive int32 = iota
	channelDestroying
	channelDestroyed
)

var (
	channelsMu    sync.RWMutex
	channels      = make(map[ChannelID]*channel)
	lastChannelID atomic.Int32
)

func lookupChannel(id ChannelID) *channel {
	channelsMu.RLock()
	defer channelsMu.RUnlock()
	return channels[id]
}

type channel struct {
	id     ChannelID
	name   string
	owner  *thread
	logger logging.Logger
	poller *netpoll.Poller

	// lifeMu guards state against the cross-thread entry points,
	// which must never touch a poller that's been closed.
	lifeMu sync.RWMutex
	state  atomic.Int32

	queueMu sync.Mutex
	events  *queue.Queue

	// Fields below are touched by the owner thread only.
	delivered   *Event
	dispatching bool
	domainData  map[int]any
	destroyers  []destroyEntry
	sigevents   map[*Sigevent]struct{}
}

func newChannel(t *thread, opts *Options) (*channel, error) {
	poller, err := netpoll.OpenPoller(opts.PollEventsCap)
	if err != nil {
		return nil, err
	}
	c := &channel{
		id:         ChannelID(lastChannelID.Add(1)),
		name:       opts.Name,
		owner:      t,
		logger:     opts.Logger,
		poller:     poller,
		events:     queue.New(),
		domainData: make(map[int]any),
		sigevents:  make(map[*Sigevent]struct{}),
	}
	channelsMu.Lock()
	channels[c.id] = c
	channelsMu.Unlock()
	t.channels[c.id] = c
	return c, nil
}

func (c *channel) usable() error {
	switch c.state.Load() {
	case channelAlive:
		return nil
	case channelDestroying:
		return errorx.ErrChannelDestroying
	default:
		return errorx.ErrInvalidChannel
	}
}

// alive runs fn while holding the channel open against a concurrent destroy.
func (c *channel) alive(fn func() error) error {
	c.lifeMu.RLock()
	defer c.lifeMu.RUnlock()
	if err := c.usable(); err != nil {
		return err
	}
	return fn()
}

func (c *channel) push(ev *Event) error {
	if ev == nil {
		return errorx.ErrNilEvent
	}
	return c.alive(func() error {
		if err := ev.enqueue(c.id); err != nil {
			return err
		}
		c.queueMu.Lock()
		c.events.Add(ev)
		c.queueMu.Unlock()
		return c.poller.Wakeup()
	})
}

func (c *channel) dequeue() *Event {
	c.queueMu.Lock()
	defer c.queueMu.Unlock()
	if c.events.Length() == 0 {
		return nil
	}
	return c.events.Remove().(*Event)
}

func (c *channel) exec(fn ExecFunc, data any) error {
	if fn == nil {
		return errorx.ErrNilHandler
	}
	return c.alive(func() error {
		return c.poller.Trigger(func(arg any) error {
			if err := fn(arg); err != nil {
				c.logger.Warnf("exec function on channel %d failed: %v", c.id, err)
			}
			return nil
		}, data)
	})
}

func (c *channel) releaseDelivered() {
	if ev := c.delivered; ev != nil {
		c.delivered = nil
		ev.release(c.id, eventDelivered)
	}
}

func (c *channel) getEvent(timeout time.Duration) (*Event, error) {
	c.releaseDelivered()

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if ev := c.dequeue(); ev != nil {
			ev.deliver()
			c.delivered = ev
			return ev, nil
		}

		msec := -1
		if timeout == 0 {
			msec = 0
		} else if timeout > 0 {
			remain := time.Until(deadline)
			if remain <= 0 {
				return nil, nil
			}
			msec = int((remain + time.Millisecond - 1) / time.Millisecond)
		}

		c.dispatching = true
		err := c.poller.Wait(msec)
		c.dispatching = false
		if err != nil {
			return nil, err
		}
		if err = c.usable(); err != nil {
			return nil, err
		}

		if timeout == 0 {
			if ev := c.dequeue(); ev != nil {
				ev.deliver()
				c.delivered = ev
				return ev, nil
			}
			return nil, nil
		}
	}
}

func (c *channel) addFD(fd int, events IOEvent, handler IOHandler, data any) error {
	if handler == nil {
		return errorx.ErrNilHandler
	}
	return c.poller.Add(&netpoll.PollAttachment{FD: fd, Callback: func(fd int, ev netpoll.IOEvent) error {
		return handler(fd, ev, data)
	}}, events)
}

func (c *channel) destroy() {
	c.state.Store(channelDestroying)
	for i := len(c.destroyers) - 1; i >= 0; i-- {
		c.destroyers[i].fn(c.destroyers[i].data)
	}
	c.destroyers = nil

	c.lifeMu.Lock()
	c.state.Store(channelDestroyed)
	c.lifeMu.Unlock()

	channelsMu.Lock()
	delete(channels, c.id)
	channelsMu.Unlock()

	for se := range c.sigevents {
		se.registered.Store(false)
	}
	c.sigevents = nil
	for _, fd := range c.poller.Attachments() {
		logging.Error(c.poller.Delete(fd))
	}
	if err := c.poller.Close(); err != nil {
		c.logger.Warnf("failed to close the poller of channel %d: %v", c.id, err)
	}

	c.releaseDelivered()
	for ev := c.dequeue(); ev != nil; ev = c.dequeue() {
		ev.release(c.id, eventQueued)
	}
	c.domainData = nil
}

// GetEvent retrieves the next event of the active channel.
// A negative timeout blocks until an event arrives, zero returns immediately and a
// positive timeout waits at most that long. A nil event with a nil error means that
// no event arrived in time.
//
// While GetEvent waits, the I/O handlers, sigevent handlers and exec functions of the
// channel run on the calling thread. The previous event returned on this channel is
// released when GetEvent is called again.
func GetEvent(timeout time.Duration) (*Event, error) {
	c, err := activeChannel()
	if err != nil {
		return nil, err
	}
	return c.getEvent(timeout)
}

// PushEvent queues ev on the active channel of the calling thread.
func PushEvent(ev *Event) error {
	c, err := activeChannel()
	if err != nil {
		return err
	}
	return c.push(ev)
}

// ChannelPushEvent queues ev on channel id, which may belong to any thread.
// Ownership of ev moves to that channel.
func ChannelPushEvent(id ChannelID, ev *Event) error {
	c := lookupChannel(id)
	if c == nil {
		return errorx.ErrInvalidChannel
	}
	return c.push(ev)
}

// ChannelExec schedules fn to run with data on the thread that owns channel id, the
// next time that thread waits in GetEvent. It's safe to call from any goroutine.
func ChannelExec(id ChannelID, fn ExecFunc, data any) error {
	c := lookupChannel(id)
	if c == nil {
		return errorx.ErrInvalidChannel
	}
	return c.exec(fn, data)
}

// AddFD watches fd for events on the active channel, handler is called with data
// when fd becomes ready. A file descriptor can be added once per channel.
func AddFD(fd int, events IOEvent, handler IOHandler, data any) error {
	c, err := activeChannel()
	if err != nil {
		return err
	}
	return c.addFD(fd, events, handler, data)
}

// RemoveFD stops watching fd on the active channel.
func RemoveFD(fd int) error {
	c, err := activeChannel()
	if err != nil {
		return err
	}
	return c.poller.Delete(fd)
}

// SetDomainData stores data for domain on the active channel, a nil data removes it.
func SetDomainData(domain int, data any) error {
	if !IsRegisteredDomain(domain) {
		return errorx.ErrInvalidDomain
	}
	c, err := activeChannel()
	if err != nil {
		return err
	}
	if data == nil {
		delete(c.domainData, domain)
	} else {
		c.domainData[domain] = data
	}
	return nil
}

// GetDomainData returns what SetDomainData stored for domain on the active channel.
func GetDomainData(domain int) (any, error) {
	if !IsRegisteredDomain(domain) {
		return nil, errorx.ErrInvalidDomain
	}
	c, err := activeChannel()
	if err != nil {
		return nil, err
	}
	return c.domainData[domain], nil
}

// RegisterChannelDestroyHandler registers fn to be called with data when the
// active channel is destroyed.
func RegisterChannelDestroyHandler(fn ChannelDestroyHandler, data any) error {
	if fn == nil {
		return errorx.ErrNilHandler
	}
	c, err := activeChannel()
	if err != nil {
		return err
	}
	c.destroyers = append(c.destroyers, destroyEntry{fn, data})
	return nil
}
