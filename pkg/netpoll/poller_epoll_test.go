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

package netpoll

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

func openPipe(t *testing.T) (r, w int) {
	var fds [2]int
	require.NoError(t, unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC))
	t.Cleanup(func() {
		_ = unix.Close(fds[0])
		_ = unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPollerReadable(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	r, w := openPipe(t)
	var got []IOEvent
	pa := &PollAttachment{FD: r, Callback: func(fd int, ev IOEvent) error {
		assert.Equal(t, r, fd)
		got = append(got, ev)
		buf := make([]byte, 16)
		_, _ = unix.Read(fd, buf)
		return nil
	}}
	require.NoError(t, p.Add(pa, In))
	assert.ErrorIs(t, p.Add(&PollAttachment{FD: r}, In), errorx.ErrFDAlreadyRegistered)

	require.NoError(t, p.Wait(0))
	assert.Empty(t, got, "nothing written yet")

	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, p.Wait(1000))
	assert.Equal(t, []IOEvent{In}, got)

	require.NoError(t, p.Delete(r))
	assert.ErrorIs(t, p.Delete(r), errorx.ErrFDNotRegistered)
	assert.Empty(t, p.Attachments())
}

func TestPollerCallbackError(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	r, w := openPipe(t)
	require.NoError(t, p.Add(&PollAttachment{FD: r, Callback: func(int, IOEvent) error {
		return errorx.ErrInvalidArgument
	}}, In))
	_, err = unix.Write(w, []byte("x"))
	require.NoError(t, err)
	assert.ErrorIs(t, p.Wait(1000), errorx.ErrInvalidArgument)
}

func TestPollerTrigger(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	const n = MaxAsyncTasksAtOneTime + 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ran int
	)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Trigger(func(any) error {
				mu.Lock()
				ran++
				mu.Unlock()
				return nil
			}, nil))
		}()
	}
	wg.Wait()

	for i := 0; i < 10 && p.Pending() > 0; i++ {
		require.NoError(t, p.Wait(1000))
	}
	assert.Equal(t, n, ran)
	assert.Zero(t, p.Pending())
}

func TestPollerWakeup(t *testing.T) {
	p, err := OpenPoller(InitPollEventsCap)
	require.NoError(t, err)
	defer p.Close() //nolint:errcheck

	done := make(chan error, 1)
	go func() { done <- p.Wait(-1) }()
	require.NoError(t, p.Wakeup())
	assert.NoError(t, <-done)
}

func TestIOEventTranslation(t *testing.T) {
	assert.True(t, (In | Out).Valid())
	assert.False(t, IOEvent(0).Valid())
	assert.False(t, IOEvent(8).Valid())
	assert.Equal(t, "in|except", (In | Except).String())

	assert.Equal(t, In, fromEpoll(unix.EPOLLIN, In|Out))
	assert.Equal(t, Except, fromEpoll(unix.EPOLLHUP, Except))
	assert.Equal(t, In, fromEpoll(unix.EPOLLHUP, In))
	assert.Equal(t, IOEvent(0), fromEpoll(unix.EPOLLOUT, In))
	assert.EqualValues(t, unix.EPOLLIN|unix.EPOLLOUT, toEpoll(In|Out))
}

func TestEventListSize(t *testing.T) {
	assert.Equal(t, MinPollEventsCap, newEventList(1).size)
	assert.Equal(t, 128, newEventList(100).size)
	assert.Equal(t, MaxPollEventsCap, newEventList(1<<20).size)

	el := newEventList(MaxPollEventsCap)
	el.expand()
	assert.Equal(t, MaxPollEventsCap, el.size)
	el.shrink()
	assert.Len(t, el.events, MaxPollEventsCap/2)
}
