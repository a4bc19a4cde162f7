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
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

func mustDomain(t *testing.T) int {
	d, err := RegisterDomain()
	require.NoError(t, err)
	return d
}

func mustEvent(t *testing.T, domain int, code uint16, payload any) *Event {
	ev, err := NewEvent(domain, code, payload, nil)
	require.NoError(t, err)
	return ev
}

func TestVersion(t *testing.T) {
	assert.Equal(t, 3_002_001, GetVersion())
	assert.Equal(t, "3.2.1", VersionString)
}

func TestNotInitialized(t *testing.T) {
	_, err := GetEvent(0)
	assert.ErrorIs(t, err, errorx.ErrNotInitialized)
	assert.ErrorIs(t, Shutdown(), errorx.ErrNotInitialized)
	_, err = ChannelCreate()
	assert.ErrorIs(t, err, errorx.ErrNotInitialized)
}

func TestShutdownHandlersFireOnce(t *testing.T) {
	for _, n := range []int{1, 2, 5} {
		require.NoError(t, Initialize())
		var calls []int
		require.NoError(t, RegisterShutdownHandler(func(data any) {
			calls = append(calls, data.(int))
		}, 1))
		require.NoError(t, RegisterShutdownHandler(func(data any) {
			calls = append(calls, data.(int))
		}, 2))
		for i := 1; i < n; i++ {
			require.NoError(t, Initialize())
		}
		for i := 1; i < n; i++ {
			require.NoError(t, Shutdown())
			assert.Empty(t, calls, "shutdown handlers ran before the last Shutdown")
		}
		require.NoError(t, Shutdown())
		assert.Equal(t, []int{2, 1}, calls)
		assert.ErrorIs(t, Shutdown(), errorx.ErrNotInitialized)
	}
}

func TestShutdownHandlerReentry(t *testing.T) {
	require.NoError(t, Initialize())
	var initErr, shutErr error
	require.NoError(t, RegisterShutdownHandler(func(any) {
		initErr = Initialize()
		shutErr = Shutdown()
	}, nil))
	require.NoError(t, Shutdown())
	assert.ErrorIs(t, initErr, errorx.ErrInShutdown)
	assert.ErrorIs(t, shutErr, errorx.ErrInShutdown)
}

func TestRegisterDomainUnique(t *testing.T) {
	seen := make(map[int]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				d, err := RegisterDomain()
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[d], "domain %d handed out twice", d)
				seen[d] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 800)
}

func TestRegisterDomainExhausted(t *testing.T) {
	saved := lastDomain.Load()
	defer lastDomain.Store(saved)

	lastDomain.Store(math.MaxInt32 - 1)
	d, err := RegisterDomain()
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, d)
	d, err = RegisterDomain()
	assert.ErrorIs(t, err, errorx.ErrDomainsExhausted)
	assert.Equal(t, -1, d)
}

func TestNewEventInvalidDomain(t *testing.T) {
	_, err := NewEvent(0, 1, nil, nil)
	assert.ErrorIs(t, err, errorx.ErrInvalidDomain)
	_, err = NewEvent(int(lastDomain.Load())+1, 1, nil, nil)
	assert.ErrorIs(t, err, errorx.ErrInvalidDomain)
}

func TestGetEventTimeouts(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	ev, err := GetEvent(0)
	assert.NoError(t, err)
	assert.Nil(t, ev)

	start := time.Now()
	ev, err = GetEvent(50 * time.Millisecond)
	assert.NoError(t, err)
	assert.Nil(t, ev)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestPushEventFIFO(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	for i := 0; i < 10; i++ {
		require.NoError(t, PushEvent(mustEvent(t, d, uint16(i), i)))
	}
	for i := 0; i < 10; i++ {
		ev, err := GetEvent(-1)
		require.NoError(t, err)
		require.NotNil(t, ev)
		assert.Equal(t, d, ev.Domain())
		assert.EqualValues(t, i, ev.Code())
		assert.Equal(t, i, ev.Payload())
	}
	ev, err := GetEvent(0)
	assert.NoError(t, err)
	assert.Nil(t, ev)

	assert.ErrorIs(t, PushEvent(nil), errorx.ErrNilEvent)
}

func TestPushEventTwice(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	ev := mustEvent(t, mustDomain(t), 1, nil)
	require.NoError(t, PushEvent(ev))
	assert.ErrorIs(t, PushEvent(ev), errorx.ErrEventQueued)
}

func TestEventCompletion(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	var completed []uint16
	done := func(ev *Event) { completed = append(completed, ev.Code()) }
	for i := 1; i <= 3; i++ {
		ev, err := NewEvent(d, uint16(i), nil, done)
		require.NoError(t, err)
		require.NoError(t, PushEvent(ev))
	}

	ev, err := GetEvent(0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, ev.Code())
	assert.Empty(t, completed, "an event stays valid until the next GetEvent")

	ev, err = GetEvent(0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ev.Code())
	assert.Equal(t, []uint16{1}, completed)

	// Handing the event over to another channel moves its ownership.
	chid, err := ChannelCreate()
	require.NoError(t, err)
	require.NoError(t, ChannelPushEvent(chid, ev))
	ev, err = GetEvent(0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ev.Code())
	assert.Equal(t, []uint16{1}, completed)

	require.NoError(t, ChannelDestroy(chid))
	assert.ElementsMatch(t, []uint16{1, 2}, completed)

	assert.ErrorIs(t, PushEvent(mustEventReleased(t, d)), errorx.ErrEventReleased)
}

func TestEventPushedBackToItsChannel(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	completions := 0
	ev, err := NewEvent(d, 1, nil, func(*Event) { completions++ })
	require.NoError(t, err)
	require.NoError(t, PushEvent(ev))

	got, err := GetEvent(0)
	require.NoError(t, err)
	require.Same(t, ev, got)
	require.NoError(t, PushEvent(got))

	got, err = GetEvent(0)
	require.NoError(t, err)
	require.Same(t, ev, got)
	assert.Zero(t, completions, "a re-queued event is delivered again before it completes")

	got, err = GetEvent(0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, completions)

	got, err = GetEvent(0)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, completions)
}

func mustEventReleased(t *testing.T, d int) *Event {
	ev := mustEvent(t, d, 9, nil)
	require.NoError(t, PushEvent(ev))
	got, err := GetEvent(0)
	require.NoError(t, err)
	require.Same(t, ev, got)
	got, err = GetEvent(0)
	require.NoError(t, err)
	require.Nil(t, got)
	return ev
}

func TestChannelLifecycle(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	def, err := ChannelGetActive()
	require.NoError(t, err)

	chid2, err := ChannelCreate(WithName("second"))
	require.NoError(t, err)
	assert.NotEqual(t, def, chid2)

	active, err := ChannelGetActive()
	require.NoError(t, err)
	assert.Equal(t, def, active, "a created channel is not activated")

	prev, err := ChannelSetActive(chid2)
	require.NoError(t, err)
	assert.Equal(t, def, prev)
	active, err = ChannelGetActive()
	require.NoError(t, err)
	assert.Equal(t, chid2, active)

	require.NoError(t, ChannelDestroy(chid2))
	active, err = ChannelGetActive()
	require.NoError(t, err)
	assert.Equal(t, def, active)

	assert.ErrorIs(t, ChannelDestroy(chid2), errorx.ErrInvalidChannel)
	_, err = ChannelSetActive(chid2)
	assert.ErrorIs(t, err, errorx.ErrInvalidChannel)
	assert.ErrorIs(t, ChannelDestroy(def), errorx.ErrDefaultChannel)
}

func TestPushedEventOnlyOnTargetChannel(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	def, err := ChannelGetActive()
	require.NoError(t, err)
	other, err := ChannelCreate()
	require.NoError(t, err)

	require.NoError(t, ChannelPushEvent(other, mustEvent(t, d, 7, nil)))
	ev, err := GetEvent(0)
	require.NoError(t, err)
	assert.Nil(t, ev, "the event sits on a channel that is not active")

	_, err = ChannelSetActive(other)
	require.NoError(t, err)
	ev, err = GetEvent(0)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.EqualValues(t, 7, ev.Code())

	_, err = ChannelSetActive(def)
	require.NoError(t, err)
}

func TestChannelDestroyHandlers(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	chid, err := ChannelCreate()
	require.NoError(t, err)
	_, err = ChannelSetActive(chid)
	require.NoError(t, err)

	var order []string
	var reentry []error
	require.NoError(t, RegisterChannelDestroyHandler(func(data any) {
		order = append(order, data.(string))
		reentry = append(reentry,
			PushEvent(mustEvent(t, d, 1, nil)),
			AddFD(0, IOInput, func(int, IOEvent, any) error { return nil }, nil),
			SetDomainData(d, "x"),
			ChannelDestroy(chid),
		)
	}, "first"))
	require.NoError(t, RegisterChannelDestroyHandler(func(data any) {
		order = append(order, data.(string))
	}, "second"))

	require.NoError(t, ChannelDestroy(chid))
	assert.Equal(t, []string{"second", "first"}, order)
	for _, err := range reentry {
		assert.ErrorIs(t, err, errorx.ErrChannelDestroying)
	}
}

func TestDomainData(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	v, err := GetDomainData(d)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, SetDomainData(d, "default"))
	chid, err := ChannelCreate()
	require.NoError(t, err)
	prev, err := ChannelSetActive(chid)
	require.NoError(t, err)

	v, err = GetDomainData(d)
	require.NoError(t, err)
	assert.Nil(t, v, "domain data is per channel")
	require.NoError(t, SetDomainData(d, "second"))

	_, err = ChannelSetActive(prev)
	require.NoError(t, err)
	v, err = GetDomainData(d)
	require.NoError(t, err)
	assert.Equal(t, "default", v)

	require.NoError(t, SetDomainData(d, nil))
	v, err = GetDomainData(d)
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.ErrorIs(t, SetDomainData(0, "x"), errorx.ErrInvalidDomain)
}

func TestAddRemoveFD(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	defer unix.Close(fds[0]) //nolint:errcheck
	defer unix.Close(fds[1]) //nolint:errcheck

	d := mustDomain(t)
	handler := func(fd int, events IOEvent, data any) error {
		buf := make([]byte, 64)
		n, err := unix.Read(fd, buf)
		if err != nil {
			return err
		}
		ev, err := NewEvent(data.(int), uint16(n), string(buf[:n]), nil)
		if err != nil {
			return err
		}
		return PushEvent(ev)
	}
	require.NoError(t, AddFD(fds[0], IOInput, handler, d))
	assert.ErrorIs(t, AddFD(fds[0], IOInput, handler, d), errorx.ErrFDAlreadyRegistered)
	assert.ErrorIs(t, AddFD(fds[1], 0, handler, d), errorx.ErrInvalidIOEvents)
	assert.ErrorIs(t, AddFD(fds[1], IOOutput, nil, d), errorx.ErrNilHandler)

	_, err := unix.Write(fds[1], []byte("ping"))
	require.NoError(t, err)
	ev, err := GetEvent(time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, d, ev.Domain())
	assert.Equal(t, "ping", ev.Payload())

	require.NoError(t, RemoveFD(fds[0]))
	assert.ErrorIs(t, RemoveFD(fds[0]), errorx.ErrFDNotRegistered)

	_, err = unix.Write(fds[1], []byte("pong"))
	require.NoError(t, err)
	ev, err = GetEvent(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, ev, "a removed fd is no longer dispatched")
}

func TestIOHandlerErrorFailsGetEvent(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	defer unix.Close(fds[0]) //nolint:errcheck
	defer unix.Close(fds[1]) //nolint:errcheck

	require.NoError(t, AddFD(fds[1], IOOutput, func(int, IOEvent, any) error {
		return errorx.ErrInvalidArgument
	}, nil))
	_, err := GetEvent(time.Second)
	assert.ErrorIs(t, err, errorx.ErrInvalidArgument)
}

func TestCrossThreadPushAndExec(t *testing.T) {
	type loop struct {
		id  ChannelID
		tid int
	}
	ready := make(chan loop)
	stop := make(chan struct{})
	got := make(chan uint16, 16)
	execTID := make(chan int, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if !assert.NoError(t, Initialize()) {
			close(ready)
			return
		}
		defer Shutdown() //nolint:errcheck
		id, err := ChannelGetActive()
		assert.NoError(t, err)
		ready <- loop{id, unix.Gettid()}
		for {
			select {
			case <-stop:
				return
			default:
			}
			ev, err := GetEvent(10 * time.Millisecond)
			if !assert.NoError(t, err) {
				return
			}
			if ev != nil {
				got <- ev.Code()
			}
		}
	}()

	l, ok := <-ready
	require.True(t, ok)

	d := mustDomain(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, ChannelPushEvent(l.id, mustEvent(t, d, uint16(i), nil)))
	}
	require.NoError(t, ChannelExec(l.id, func(any) error {
		execTID <- unix.Gettid()
		return nil
	}, nil))
	for i := 0; i < 5; i++ {
		select {
		case code := <-got:
			assert.EqualValues(t, i, code)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a pushed event")
		}
	}
	select {
	case tid := <-execTID:
		assert.Equal(t, l.tid, tid, "exec runs on the thread that owns the channel")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the exec function")
	}

	// The channel is not owned by this goroutine's thread.
	require.NoError(t, Initialize())
	_, err := ChannelSetActive(l.id)
	assert.ErrorIs(t, err, errorx.ErrWrongThread)
	require.NoError(t, Shutdown())

	close(stop)
	wg.Wait()
	assert.ErrorIs(t, ChannelPushEvent(l.id, mustEvent(t, d, 1, nil)), errorx.ErrInvalidChannel)
	assert.ErrorIs(t, ChannelExec(l.id, func(any) error { return nil }, nil), errorx.ErrInvalidChannel)
}

func TestSigevent(t *testing.T) {
	require.NoError(t, Initialize())
	defer Shutdown() //nolint:errcheck

	d := mustDomain(t)
	var delivered int
	se, err := AddSigeventHandler(func(se *Sigevent, data any) error {
		delivered++
		ev, err := NewEvent(data.(int), 0x42, nil, nil)
		if err != nil {
			return err
		}
		return PushEvent(ev)
	}, d)
	require.NoError(t, err)
	active, err := ChannelGetActive()
	require.NoError(t, err)
	assert.Equal(t, active, se.Channel())

	done := make(chan error, 1)
	go func() { done <- se.Deliver() }()
	require.NoError(t, <-done)

	ev, err := GetEvent(time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.EqualValues(t, 0x42, ev.Code())
	assert.Equal(t, 1, delivered)

	require.NoError(t, RemoveSigeventHandler(se))
	assert.ErrorIs(t, RemoveSigeventHandler(se), errorx.ErrSigeventNotRegistered)
	assert.ErrorIs(t, se.Deliver(), errorx.ErrSigeventNotRegistered)
}

func TestShutdownDestroysChannels(t *testing.T) {
	require.NoError(t, Initialize())
	var destroyed []string
	chid, err := ChannelCreate()
	require.NoError(t, err)
	_, err = ChannelSetActive(chid)
	require.NoError(t, err)
	require.NoError(t, RegisterChannelDestroyHandler(func(any) { destroyed = append(destroyed, "created") }, nil))
	_, err = ChannelSetActive(1 << 30)
	assert.ErrorIs(t, err, errorx.ErrInvalidChannel)

	require.NoError(t, Shutdown())
	assert.Equal(t, []string{"created"}, destroyed)
	assert.ErrorIs(t, ChannelPushEvent(chid, mustEvent(t, mustDomain(t), 1, nil)), errorx.ErrInvalidChannel)
}

func TestShutdownFromHandlerRejected(t *testing.T) {
	require.NoError(t, Initialize())
	id, err := ChannelGetActive()
	require.NoError(t, err)

	var inner error
	require.NoError(t, ChannelExec(id, func(any) error {
		inner = Shutdown()
		return nil
	}, nil))
	ev, err := GetEvent(0)
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.ErrorIs(t, inner, errorx.ErrChannelBusy)

	// The thread is intact and the final Shutdown still works outside of GetEvent.
	d := mustDomain(t)
	require.NoError(t, ChannelPushEvent(id, mustEvent(t, d, 1, nil)))
	ev, err = GetEvent(0)
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.NoError(t, Shutdown())
	assert.ErrorIs(t, ChannelPushEvent(id, mustEvent(t, d, 2, nil)), errorx.ErrInvalidChannel)
}
