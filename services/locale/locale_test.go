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

package locale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/bps"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

func TestLocaleEvents(t *testing.T) {
	require.NoError(t, bps.Initialize())
	defer func() { require.NoError(t, bps.Shutdown()) }()
	require.NoError(t, RequestEvents(0))
	assert.ErrorIs(t, RequestEvents(0), errorx.ErrAlreadyRequested)

	host := DefaultHost()
	done := make(chan error)
	go func() {
		if err := host.Set("fr", "CA"); err != nil {
			done <- err
			return
		}
		done <- host.Set("de", "")
	}()
	require.NoError(t, <-done)

	ev, err := bps.GetEvent(time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, GetDomain(), ev.Domain())
	assert.Equal(t, Info, ev.Code())
	loc, err := EventGetLocale(ev)
	require.NoError(t, err)
	assert.Equal(t, "fr_CA", loc)

	ev, err = bps.GetEvent(time.Second)
	require.NoError(t, err)
	require.NotNil(t, ev)
	lang, err := EventGetLanguage(ev)
	require.NoError(t, err)
	assert.Equal(t, "de", lang)
	country, err := EventGetCountry(ev)
	require.NoError(t, err)
	assert.Empty(t, country)

	lang, country, err = Get()
	require.NoError(t, err)
	assert.Equal(t, "de", lang)
	assert.Empty(t, country)

	require.NoError(t, StopEvents(0))
	assert.ErrorIs(t, StopEvents(0), errorx.ErrNotRequested)
	assert.Zero(t, host.Watchers())
	require.NoError(t, host.Set("en", "US"))
	ev, err = bps.GetEvent(20 * time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, ev)
}

func TestShutdownStopsWatching(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if !assert.NoError(t, bps.Initialize()) {
			return
		}
		assert.NoError(t, RequestEvents(0))
		assert.Equal(t, 1, DefaultHost().Watchers())
		assert.NoError(t, bps.Shutdown())
	}()
	<-done
	assert.Zero(t, DefaultHost().Watchers())
	assert.ErrorIs(t, DefaultHost().Set("", "x"), errorx.ErrInvalidArgument)
}

func TestForeignEvent(t *testing.T) {
	other, err := bps.RegisterDomain()
	require.NoError(t, err)
	ev, err := bps.NewEvent(other, Info, Locale{"en", "GB"}, nil)
	require.NoError(t, err)
	_, err = EventGetLanguage(ev)
	assert.ErrorIs(t, err, errorx.ErrInvalidEvent)
}

func TestRequestStopCycleKeepsOneSlot(t *testing.T) {
	require.NoError(t, bps.Initialize())
	defer func() { require.NoError(t, bps.Shutdown()) }()
	chid, err := bps.ChannelCreate()
	require.NoError(t, err)
	prev, err := bps.ChannelSetActive(chid)
	require.NoError(t, err)

	require.NoError(t, RequestEvents(0))
	first, err := bps.GetDomainData(GetDomain())
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, StopEvents(0))
		require.NoError(t, RequestEvents(0))
		data, err := bps.GetDomainData(GetDomain())
		require.NoError(t, err)
		require.Same(t, first, data)
	}
	assert.Equal(t, 1, DefaultHost().Watchers())

	_, err = bps.ChannelSetActive(prev)
	require.NoError(t, err)
	require.NoError(t, bps.ChannelDestroy(chid))
	assert.Zero(t, DefaultHost().Watchers())
}
