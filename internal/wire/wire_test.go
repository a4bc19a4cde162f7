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

package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/bytebufferpool"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

func TestDecodeSplitStream(t *testing.T) {
	a := NewMessage(0x07).Set("id", "42").SetInt("angle", 90).SetBool("edge", true)
	b := NewMessage(0x02)

	var stream []byte
	for _, m := range []*Message{a, b} {
		buf, err := Encode(m)
		require.NoError(t, err)
		assert.Equal(t, m.Size(), buf.Len())
		stream = append(stream, buf.B...)
		bytebufferpool.Put(buf)
	}

	var d Decoder
	var got []*Message
	// Feed one byte at a time to cover every partial frame.
	for _, c := range stream {
		d.Feed([]byte{c})
		for {
			m, err := d.Next()
			require.NoError(t, err)
			if m == nil {
				break
			}
			got = append(got, m)
		}
	}
	require.Len(t, got, 2)
	assert.Zero(t, d.Buffered())

	assert.EqualValues(t, 0x07, got[0].Code)
	id, err := got[0].Uint32("id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	angle, err := got[0].Int("angle")
	require.NoError(t, err)
	assert.EqualValues(t, 90, angle)
	edge, err := got[0].Bool("edge")
	require.NoError(t, err)
	assert.True(t, edge)

	assert.EqualValues(t, 0x02, got[1].Code)
	assert.Empty(t, got[1].Attrs)
}

func TestAccessorErrors(t *testing.T) {
	m := NewMessage(1).Set("n", "x")
	_, err := m.String("missing")
	assert.ErrorIs(t, err, errorx.ErrMissingAttribute)
	_, err = m.Int("n")
	assert.ErrorIs(t, err, errorx.ErrMalformedFrame)
	_, err = m.Bool("n")
	assert.ErrorIs(t, err, errorx.ErrMalformedFrame)

	m.Set("n", "1")
	v, _ := m.Lookup("n")
	assert.Equal(t, "1", v)
	assert.Len(t, m.Attrs, 1)
}

func TestFrameLimits(t *testing.T) {
	_, err := Encode(NewMessage(1).Set("big", strings.Repeat("x", MaxFrameSize)))
	assert.ErrorIs(t, err, errorx.ErrFrameTooLarge)

	var d Decoder
	d.Feed([]byte{0, 2, 0, 1, 0, 0})
	_, err = d.Next()
	assert.ErrorIs(t, err, errorx.ErrMalformedFrame)

	d = Decoder{}
	d.Feed([]byte{0, 8, 0, 1, 0, 1, 0, 9})
	_, err = d.Next()
	assert.ErrorIs(t, err, errorx.ErrMalformedFrame)
}
