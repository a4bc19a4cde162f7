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
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sys/unix"

	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// ShutdownHandler is called once, when the last Shutdown of the thread that registered it runs.
type ShutdownHandler func(data any)

type shutdownEntry struct {
	fn   ShutdownHandler
	data any
}

// thread is the bps state of one OS thread.
type thread struct {
	tid          int
	refs         int
	opts         *Options
	defaultCh    *channel
	active       *channel
	channels     map[ChannelID]*channel
	shutdown     []shutdownEntry
	shuttingDown bool
}

var (
	threadsMu sync.Mutex
	threads   = make(map[int]*thread)
)

func (t *thread) logger() logging.Logger {
	return t.opts.Logger
}

func currentThread() (*thread, error) {
	tid := unix.Gettid()
	threadsMu.Lock()
	t := threads[tid]
	threadsMu.Unlock()
	if t == nil {
		return nil, errorx.ErrNotInitialized
	}
	return t, nil
}

// activeChannel returns the active channel of the calling thread, ready for use.
func activeChannel() (*channel, error) {
	t, err := currentThread()
	if err != nil {
		return nil, err
	}
	if err = t.active.usable(); err != nil {
		return nil, err
	}
	return t.active, nil
}

// ownedChannel looks up a channel that the calling thread owns.
func (t *thread) ownedChannel(id ChannelID) (*channel, error) {
	if c, ok := t.channels[id]; ok {
		return c, nil
	}
	if lookupChannel(id) != nil {
		return nil, errorx.ErrWrongThread
	}
	return nil, errorx.ErrInvalidChannel
}

// Initialize sets bps up on the calling thread. The first call creates and activates
// the default channel of the thread, every further call only bumps a reference count
// that Shutdown takes down. opts are applied by the first call only.
//
// Initialize locks the calling goroutine to its OS thread until the matching Shutdown.
func Initialize(opts ...Option) error {
	runtime.LockOSThread()
	tid := unix.Gettid()

	threadsMu.Lock()
	t := threads[tid]
	threadsMu.Unlock()
	if t != nil {
		if t.shuttingDown {
			runtime.UnlockOSThread()
			return errorx.ErrInShutdown
		}
		t.refs++
		return nil
	}

	t = &thread{tid: tid, refs: 1, opts: loadOptions(nil, opts...), channels: make(map[ChannelID]*channel)}
	c, err := newChannel(t, t.opts)
	if err != nil {
		runtime.UnlockOSThread()
		return err
	}
	t.defaultCh, t.active = c, c

	threadsMu.Lock()
	threads[tid] = t
	threadsMu.Unlock()

	t.logger().Debugf("thread %d initialized with default channel %d", tid, c.id)
	return nil
}

// Shutdown undoes one Initialize on the calling thread. The last call runs the
// shutdown handlers in reverse order of registration, then destroys every channel
// of the thread, the default channel last. The last call fails with ErrChannelBusy
// when made from a handler that runs inside GetEvent.
func Shutdown() error {
	t, err := currentThread()
	if err != nil {
		return err
	}
	if t.shuttingDown {
		return errorx.ErrInShutdown
	}
	if t.refs == 1 {
		for _, c := range t.channels {
			if c.dispatching {
				return errorx.ErrChannelBusy
			}
		}
	}
	t.refs--
	if t.refs > 0 {
		runtime.UnlockOSThread()
		return nil
	}

	t.shuttingDown = true
	for i := len(t.shutdown) - 1; i >= 0; i-- {
		t.shutdown[i].fn(t.shutdown[i].data)
	}
	t.shutdown = nil

	ids := make([]ChannelID, 0, len(t.channels))
	for id, c := range t.channels {
		if c != t.defaultCh {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	for _, id := range ids {
		if c := t.channels[id]; c != nil {
			logging.Error(t.destroyChannel(c))
		}
	}
	t.active = t.defaultCh
	logging.Error(t.destroyChannel(t.defaultCh))

	threadsMu.Lock()
	delete(threads, t.tid)
	threadsMu.Unlock()

	t.logger().Debugf("thread %d shut down", t.tid)
	runtime.UnlockOSThread()
	return nil
}

// RegisterShutdownHandler registers fn to be called with data when the calling
// thread shuts down for the last time.
func RegisterShutdownHandler(fn ShutdownHandler, data any) error {
	if fn == nil {
		return errorx.ErrNilHandler
	}
	t, err := currentThread()
	if err != nil {
		return err
	}
	if t.shuttingDown {
		return errorx.ErrInShutdown
	}
	t.shutdown = append(t.shutdown, shutdownEntry{fn, data})
	return nil
}

// ChannelCreate creates a channel owned by the calling thread, the channel is not activated.
func ChannelCreate(opts ...Option) (ChannelID, error) {
	t, err := currentThread()
	if err != nil {
		return 0, err
	}
	c, err := newChannel(t, loadOptions(t.opts, opts...))
	if err != nil {
		return 0, err
	}
	t.logger().Debugf("channel %d created on thread %d", c.id, t.tid)
	return c.id, nil
}

// ChannelSetActive makes id the channel that the calling thread's subsequent calls
// apply to and returns the channel that was active before.
func ChannelSetActive(id ChannelID) (ChannelID, error) {
	t, err := currentThread()
	if err != nil {
		return 0, err
	}
	c, err := t.ownedChannel(id)
	if err != nil {
		return 0, err
	}
	if err = c.usable(); err != nil {
		return 0, err
	}
	prev := t.active.id
	t.active = c
	return prev, nil
}

// ChannelGetActive returns the active channel of the calling thread.
func ChannelGetActive() (ChannelID, error) {
	t, err := currentThread()
	if err != nil {
		return 0, err
	}
	return t.active.id, nil
}

// ChannelDestroy destroys a channel created by ChannelCreate. The channel destroy
// handlers run first, in reverse order of registration; while they run, the channel
// rejects every call with ErrChannelDestroying. If the channel was active, the default
// channel of the thread becomes active again.
func ChannelDestroy(id ChannelID) error {
	t, err := currentThread()
	if err != nil {
		return err
	}
	c, err := t.ownedChannel(id)
	if err != nil {
		return err
	}
	if c == t.defaultCh {
		return errorx.ErrDefaultChannel
	}
	if err = c.usable(); err != nil {
		return err
	}
	return t.destroyChannel(c)
}

func (t *thread) destroyChannel(c *channel) error {
	if c.dispatching {
		return errorx.ErrChannelBusy
	}
	c.destroy()
	delete(t.channels, c.id)
	if t.active == c {
		t.active = t.defaultCh
	}
	t.logger().Debugf("channel %d destroyed on thread %d", c.id, t.tid)
	return nil
}
