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

// Package ids is the identity service client. Applications register the identity
// providers they need and make asynchronous requests through them: each request
// returns a request id at once and its outcome is reported later through the
// success or failure callback it was given.
//
// Callbacks never run on their own. Every provider has a file descriptor that turns
// readable when outcomes are waiting, the application watches it (typically with
// bps.AddFD) and calls Client.ProcessMsg, which runs the callbacks on the calling
// goroutine.
package ids

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/bps/pkg/logging"
	"github.com/panjf2000/bps/pkg/pool/goroutine"
)

// Result is the outcome of an identity service call.
type Result int

const (
	Success Result = iota
	Failure
	NotAllowed
	NameNotFound
	Unknown
	TooManyNames
	BadParameter
	AlreadyExists
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case NotAllowed:
		return "not allowed"
	case NameNotFound:
		return "name not found"
	case Unknown:
		return "unknown"
	case TooManyNames:
		return "too many names"
	case BadParameter:
		return "bad parameter"
	case AlreadyExists:
		return "already exists"
	}
	return "result(" + strconv.Itoa(int(r)) + ")"
}

// Error is how a Backend reports a failure with a specific Result.
type Error struct {
	Result Result
	Info   string
}

func (e *Error) Error() string {
	if len(e.Info) == 0 {
		return "ids: " + e.Result.String()
	}
	return "ids: " + e.Result.String() + ": " + e.Info
}

func resultOf(err error) (Result, string) {
	if e, ok := err.(*Error); ok {
		return e.Result, e.Info
	}
	return Failure, err.Error()
}

// MemoryProvider is the name of the provider every process has.
const MemoryProvider = "memory"

type backendEntry struct {
	name    string
	backend Backend

	mu       sync.Mutex
	watchers map[*Provider]struct{}
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*backendEntry{
		MemoryProvider: {name: MemoryProvider, backend: NewMemoryBackend(nil), watchers: make(map[*Provider]struct{})},
	}
)

// RegisterBackend makes b available to RegisterProvider under name.
func RegisterBackend(name string, b Backend) Result {
	if len(name) == 0 || b == nil {
		return BadParameter
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := registry[name]; ok {
		return AlreadyExists
	}
	registry[name] = &backendEntry{name: name, backend: b, watchers: make(map[*Provider]struct{})}
	return Success
}

func lookupBackend(name string) *backendEntry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// notify queues a data change to every provider watching e.
func (e *backendEntry) notify(dataType int, name string, change Change) {
	e.mu.Lock()
	ps := make([]*Provider, 0, len(e.watchers))
	for p := range e.watchers {
		ps = append(ps, p)
	}
	e.mu.Unlock()
	for _, p := range ps {
		p.notify(dataType, name, change)
	}
}

func (e *backendEntry) watch(p *Provider, on bool) {
	e.mu.Lock()
	if on {
		e.watchers[p] = struct{}{}
	} else {
		delete(e.watchers, p)
	}
	e.mu.Unlock()
}

// Client is the connection of an application to the identity service.
type Client struct {
	pool    *goroutine.Pool
	lastReq atomic.Uint32

	mu        sync.Mutex
	providers map[int]*Provider
	closed    bool
}

// Initialize connects to the identity service.
func Initialize() (*Client, error) {
	return &Client{pool: goroutine.Default(), providers: make(map[int]*Provider)}, nil
}

// RegisterProvider opens provider name, the returned descriptor becomes readable
// when outcomes of its requests are waiting for ProcessMsg.
func (c *Client) RegisterProvider(name string) (*Provider, int, error) {
	e := lookupBackend(name)
	if e == nil {
		return nil, -1, &Error{NameNotFound, name}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, -1, &Error{NotAllowed, "client is shut down"}
	}
	for _, p := range c.providers {
		if p.entry == e {
			return nil, -1, &Error{AlreadyExists, name}
		}
	}
	r, w, err := openPipe()
	if err != nil {
		return nil, -1, err
	}
	p := &Provider{client: c, entry: e, rfd: r, wfd: w}
	c.providers[r] = p
	return p, r, nil
}

// ProcessMsg runs the callbacks waiting on the provider behind fd.
func (c *Client) ProcessMsg(fd int) Result {
	c.mu.Lock()
	p := c.providers[fd]
	c.mu.Unlock()
	if p == nil {
		return BadParameter
	}
	p.process()
	return Success
}

// Shutdown closes every provider, outcomes not processed yet are dropped.
func (c *Client) Shutdown() Result {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return NotAllowed
	}
	c.closed = true
	ps := c.providers
	c.providers = nil
	c.mu.Unlock()
	for _, p := range ps {
		p.close()
	}
	logging.Debugf("ids: client shut down with %d providers", len(ps))
	return Success
}

func (c *Client) nextRequestID() uint32 {
	for {
		if id := c.lastReq.Add(1); id != 0 {
			return id
		}
	}
}
