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

package navigator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/bps"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

func setup(t *testing.T) {
	t.Helper()
	require.NoError(t, bps.Initialize())
	require.NoError(t, RequestEvents(0))
	t.Cleanup(func() {
		require.NoError(t, bps.Shutdown())
		assert.Zero(t, DefaultHost().Subscribers())
	})
}

func nextEvent(t *testing.T) *bps.Event {
	t.Helper()
	ev, err := bps.GetEvent(time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev, "no navigator event in time")
	require.Equal(t, GetDomain(), ev.Domain())
	return ev
}

func TestBlockingGetEventReceivesNavigatorEvent(t *testing.T) {
	require.NoError(t, bps.Initialize())
	defer func() { require.NoError(t, bps.Shutdown()) }()
	_, err := bps.RegisterDomain()
	require.NoError(t, err)
	require.NoError(t, RequestEvents(0))

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = DefaultHost().Notify(SwipeDown)
	}()
	ev, err := bps.GetEvent(-1)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, GetDomain(), ev.Domain())
	assert.GreaterOrEqual(t, ev.Code(), Invoke)
	assert.LessOrEqual(t, ev.Code(), WindowUnlock)
	assert.Equal(t, SwipeDown, ev.Code())
}

func TestHostEvents(t *testing.T) {
	setup(t)
	host := DefaultHost()

	require.NoError(t, host.SetWindowState(WindowThumbnail))
	ev := nextEvent(t)
	assert.Equal(t, WindowState, ev.Code())
	w, err := EventGetWindowState(ev)
	require.NoError(t, err)
	assert.Equal(t, WindowThumbnail, w)

	require.NoError(t, host.Invoke("http://example.com"))
	ev = nextEvent(t)
	assert.Equal(t, Invoke, ev.Code())
	uri, err := InvokeEventGetURI(ev)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", uri)
	id, err := EventGetID(ev)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = EventGetOrientationAngle(ev)
	assert.ErrorIs(t, err, errorx.ErrMissingAttribute)
	assert.ErrorIs(t, host.Notify(0x40), errorx.ErrInvalidArgument)
}

func TestSetOrientation(t *testing.T) {
	setup(t)
	DefaultHost().OnSetOrientation(func(angle int) bool { return angle != 180 })
	defer DefaultHost().OnSetOrientation(nil)

	_, err := SetOrientation(45)
	assert.ErrorIs(t, err, errorx.ErrInvalidArgument)

	for _, tc := range []struct {
		angle int
		ok    bool
	}{{90, true}, {180, false}} {
		id, err := SetOrientation(tc.angle)
		require.NoError(t, err)
		ev := nextEvent(t)
		assert.Equal(t, OrientationResult, ev.Code())
		got, err := EventGetID(ev)
		require.NoError(t, err)
		assert.Equal(t, id, got)
		ok, err := EventGetOrientationResult(ev)
		require.NoError(t, err)
		assert.Equal(t, tc.ok, ok)
	}
}

func TestOrientationHandshake(t *testing.T) {
	setup(t)
	host := DefaultHost()

	id, err := host.Rotate(270, EdgeLeft)
	require.NoError(t, err)
	assert.Equal(t, 1, host.Pending())

	ev := nextEvent(t)
	assert.Equal(t, OrientationCheck, ev.Code())
	assert.ErrorIs(t, DoneOrientation(ev), errorx.ErrInvalidEvent)
	require.NoError(t, OrientationCheckResponse(ev, true))

	ev = nextEvent(t)
	assert.Equal(t, Orientation, ev.Code())
	got, _ := EventGetID(ev)
	assert.Equal(t, id, got)
	angle, err := EventGetOrientationAngle(ev)
	require.NoError(t, err)
	assert.Equal(t, 270, angle)
	edge, err := EventGetOrientationEdge(ev)
	require.NoError(t, err)
	assert.Equal(t, EdgeLeft, edge)

	require.NoError(t, DoneOrientation(ev))
	ev = nextEvent(t)
	assert.Equal(t, OrientationDone, ev.Code())
	assert.Zero(t, host.Pending())
}

func TestRequestsNeedEvents(t *testing.T) {
	require.NoError(t, bps.Initialize())
	defer func() { require.NoError(t, bps.Shutdown()) }()

	_, err := SetOrientation(90)
	assert.ErrorIs(t, err, errorx.ErrNotRequested)
	assert.ErrorIs(t, RequestExit(), errorx.ErrNotRequested)
	assert.ErrorIs(t, InvokeURL(""), errorx.ErrInvalidArgument)

	var invoked string
	DefaultHost().OnInvoke(func(uri string) error { invoked = uri; return nil })
	defer DefaultHost().OnInvoke(nil)
	require.NoError(t, InvokeURL("app://settings"))
	assert.Equal(t, "app://settings", invoked)

	require.NoError(t, RequestEvents(0))
	require.NoError(t, RequestExit())
	ev := nextEvent(t)
	assert.Equal(t, Exit, ev.Code())
	require.NoError(t, StopEvents(0))
	assert.ErrorIs(t, StopEvents(0), errorx.ErrNotRequested)
}
