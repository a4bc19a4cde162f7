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

package humac

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/bps/pkg/sb"
)

// RFC 4231, test case 2.
func TestHMACSHA256(t *testing.T) {
	c, err := Begin(HMACSHA256, []byte("Jefe"))
	require.NoError(t, err)
	require.NoError(t, c.Update([]byte("what do ya want ")))
	require.NoError(t, c.Update([]byte("for nothing?")))

	n, err := c.TagGet(nil)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	_, err = c.TagGet(make([]byte, 16))
	assert.ErrorIs(t, err, sb.ErrBadOutputBufLen)

	tag := make([]byte, n)
	_, err = c.TagGet(tag)
	require.NoError(t, err)
	assert.Equal(t, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843", hex.EncodeToString(tag))

	require.NoError(t, c.End())
	assert.ErrorIs(t, c.End(), sb.ErrDestroyed)
	assert.ErrorIs(t, c.Update(nil), sb.ErrDestroyed)
	_, err = c.TagGet(tag)
	assert.ErrorIs(t, err, sb.ErrDestroyed)
}

func TestTagSizes(t *testing.T) {
	for alg, size := range map[Alg]int{HMACSHA1: 20, HMACSHA256: 32, HMACSHA512: 64, BLAKE2b256: 32} {
		n, err := Sum(alg, []byte("key"), []byte("msg"), nil)
		require.NoError(t, err)
		assert.Equal(t, size, n, alg)
	}
}

func TestIncrementalMatchesOneShot(t *testing.T) {
	key := []byte("0123456789abcdef")
	msg := []byte("the quick brown fox jumps over the lazy dog")

	want := make([]byte, 32)
	_, err := Sum(BLAKE2b256, key, msg, want)
	require.NoError(t, err)

	c, err := Begin(BLAKE2b256, key)
	require.NoError(t, err)
	defer c.End() //nolint:errcheck
	for _, b := range msg {
		require.NoError(t, c.Update([]byte{b}))
	}
	got := make([]byte, 32)
	_, err = c.TagGet(got)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestBeginErrors(t *testing.T) {
	_, err := Begin(BLAKE2b256, make([]byte, 65))
	assert.ErrorIs(t, err, sb.ErrBadInput)
	_, err = Begin(Alg(9), nil)
	assert.ErrorIs(t, err, sb.ErrUnsupportedAlg)
}
