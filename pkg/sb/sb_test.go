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

package sb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCopyOut(t *testing.T) {
	src := []byte("secret")

	n, err := CopyOut(nil, src)
	assert.NoError(t, err)
	assert.Equal(t, len(src), n)

	short := make([]byte, 3)
	n, err = CopyOut(short, src)
	assert.ErrorIs(t, err, ErrBadOutputBufLen)
	assert.Equal(t, len(src), n)
	assert.Equal(t, []byte{0, 0, 0}, short)

	dst := make([]byte, 10)
	n, err = CopyOut(dst, src)
	assert.NoError(t, err)
	assert.Equal(t, src, dst[:n])
}

func TestSized(t *testing.T) {
	called := false
	produce := func(out []byte) error {
		called = true
		for i := range out {
			out[i] = 1
		}
		return nil
	}

	n, err := Sized(nil, 4, produce)
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.False(t, called)

	_, err = Sized(make([]byte, 2), 4, produce)
	assert.ErrorIs(t, err, ErrBadOutputBufLen)
	assert.False(t, called)

	dst := make([]byte, 6)
	n, err = Sized(dst, 4, produce)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 1, 1, 0, 0}, dst)
	assert.Equal(t, 4, n)

	boom := errors.New("boom")
	_, err = Sized(dst, 4, func([]byte) error { return boom })
	assert.ErrorIs(t, err, boom)
}
