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

package bps

import (
	"math"
	"sync/atomic"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

var lastDomain atomic.Int32

// RegisterDomain hands out a process-wide unique domain id.
// Ids start at 1, grow monotonically and are never reused.
func RegisterDomain() (int, error) {
	for {
		cur := lastDomain.Load()
		if cur == math.MaxInt32 {
			return -1, errorx.ErrDomainsExhausted
		}
		if lastDomain.CompareAndSwap(cur, cur+1) {
			return int(cur + 1), nil
		}
	}
}

// IsRegisteredDomain reports whether domain was handed out by RegisterDomain.
func IsRegisteredDomain(domain int) bool {
	return domain > 0 && domain <= int(lastDomain.Load())
}
