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

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCeilToPowerOfTwo(t *testing.T) {
	cases := map[int]int{0: 2, 1: 2, 2: 2, 3: 4, 8: 8, 9: 16, 100: 128, 512: 512, 513: 1024}
	for n, want := range cases {
		assert.Equalf(t, want, CeilToPowerOfTwo(n), "n=%d", n)
	}
	assert.Panics(t, func() { CeilToPowerOfTwo(maxintHeadBit + 1) })
}

func TestIsPowerOfTwo(t *testing.T) {
	assert.False(t, IsPowerOfTwo(0))
	assert.True(t, IsPowerOfTwo(1))
	assert.True(t, IsPowerOfTwo(64))
	assert.False(t, IsPowerOfTwo(96))
}
