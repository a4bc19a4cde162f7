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

// Package handle tracks the objects a service hands out to callers so that
// each one is released exactly once.
package handle

import (
	"sync"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

// Table is a set of live handles, the zero value is ready to use.
type Table[T any] struct {
	mu   sync.Mutex
	live map[*T]struct{}
}

// Add records v as live and returns it.
func (t *Table[T]) Add(v *T) *T {
	t.mu.Lock()
	if t.live == nil {
		t.live = make(map[*T]struct{})
	}
	t.live[v] = struct{}{}
	t.mu.Unlock()
	return v
}

// Check returns ErrInvalidHandle unless v is live.
func (t *Table[T]) Check(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[v]; !ok || v == nil {
		return errorx.ErrInvalidHandle
	}
	return nil
}

// Free releases v, freeing an unknown or already released handle fails.
func (t *Table[T]) Free(v *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.live[v]; !ok || v == nil {
		return errorx.ErrInvalidHandle
	}
	delete(t.live, v)
	return nil
}

// Len returns the number of live handles.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}
