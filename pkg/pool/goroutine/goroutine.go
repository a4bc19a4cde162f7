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

// Package goroutine is the worker pool that serves asynchronous service requests.
package goroutine

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/panjf2000/bps/pkg/logging"
)

const (
	// DefaultAntsPoolSize sets up the capacity of worker pool, 64 * 1024.
	DefaultAntsPoolSize = 1 << 16

	// ExpiryDuration is the interval time to clean up those expired workers.
	ExpiryDuration = 10 * time.Second

	// Nonblocking decides what to do when submitting a new task to a full worker pool: waiting for a available worker
	// or returning ants.ErrPoolOverload directly.
	Nonblocking = true
)

// Pool is the alias of ants.Pool.
type Pool = ants.Pool

type antsLogger struct{}

func (antsLogger) Printf(format string, args ...any) {
	logging.Errorf(format, args...)
}

// New instantiates a non-blocking worker pool with the given capacity.
func New(size int) (*Pool, error) {
	options := ants.Options{
		ExpiryDuration: ExpiryDuration,
		Nonblocking:    Nonblocking,
		Logger:         antsLogger{},
		PanicHandler: func(p any) {
			logging.Errorf("worker exits from panic: %v", p)
		},
	}
	return ants.NewPool(size, ants.WithOptions(options))
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool shared by the services,
// it's created with DefaultAntsPoolSize workers on first use.
func Default() *Pool {
	defaultOnce.Do(func() {
		var err error
		if defaultPool, err = New(DefaultAntsPoolSize); err != nil {
			panic("bps: failed to create the default worker pool, " + err.Error())
		}
	})
	return defaultPool
}
