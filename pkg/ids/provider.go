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

package ids

import (
	"sync"

	"github.com/panjf2000/bps/pkg/logging"
)

// MaxProperties is the number of properties one GetProperties call may ask for.
const MaxProperties = 32

// Property is a named attribute of the user.
type Property struct {
	Name  string
	Value string
}

// Data is a named blob kept by a provider.
type Data struct {
	Name  string
	Value []byte
}

// Change tells what happened to a piece of data.
type Change int

const (
	Created Change = iota
	Changed
	Deleted
)

// FailureFunc reports a failed request.
type FailureFunc func(requestID uint32, result Result, info string, cbData any)

// NotifierFunc reports a change of data that a notifier was registered for.
type NotifierFunc func(dataType int, name string, change Change, cbData any)

type notifier struct {
	dataType int
	name     string
	fn       NotifierFunc
	cbData   any
}

// Provider is an identity provider opened by a Client.
type Provider struct {
	client *Client
	entry  *backendEntry
	rfd    int

	mu        sync.Mutex
	wfd       int
	closed    bool
	pending   []func()
	notifiers []notifier
}

// Name returns the name the provider was registered with.
func (p *Provider) Name() string {
	return p.entry.name
}

// FD returns the descriptor to watch.
func (p *Provider) FD() int {
	return p.rfd
}

// complete queues fn for the next ProcessMsg and makes the descriptor readable.
func (p *Provider) complete(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.pending = append(p.pending, fn)
	if len(p.pending) == 1 {
		if err := signal(p.wfd); err != nil {
			logging.Errorf("ids: failed to signal provider %s: %v", p.entry.name, err)
		}
	}
}

func (p *Provider) process() {
	p.mu.Lock()
	drain(p.rfd)
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (p *Provider) close() {
	p.entry.watch(p, false)
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.pending = nil
	logging.Error(closeFD(p.wfd))
	logging.Error(closeFD(p.rfd))
}

func (p *Provider) notify(dataType int, name string, change Change) {
	p.mu.Lock()
	var matched []notifier
	for _, n := range p.notifiers {
		if n.dataType == dataType && (len(n.name) == 0 || n.name == name) {
			matched = append(matched, n)
		}
	}
	p.mu.Unlock()
	for _, n := range matched {
		p.complete(func() { n.fn(dataType, name, change, n.cbData) })
	}
}

// submit runs call on the worker pool and queues its outcome for ProcessMsg.
func submit[T any](p *Provider, onSuccess func(requestID uint32, v T, cbData any), onFailure FailureFunc,
	cbData any, call func(Backend) (T, error),
) (uint32, Result) {
	if onSuccess == nil {
		return 0, BadParameter
	}
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return 0, NotAllowed
	}

	id := p.client.nextRequestID()
	err := p.client.pool.Submit(func() {
		v, err := call(p.entry.backend)
		p.complete(func() {
			if err == nil {
				onSuccess(id, v, cbData)
				return
			}
			if onFailure != nil {
				r, info := resultOf(err)
				onFailure(id, r, info, cbData)
			}
		})
	})
	if err != nil {
		logging.Warnf("ids: failed to submit request %d: %v", id, err)
		return 0, Failure
	}
	return id, Success
}

// dataChange runs a data call and notifies the watchers of the provider if it succeeds.
func (p *Provider) dataChange(dataType int, name string, change Change, call func(Backend) error) func(Backend) (struct{}, error) {
	return func(b Backend) (struct{}, error) {
		if err := call(b); err != nil {
			return struct{}{}, err
		}
		p.entry.notify(dataType, name, change)
		return struct{}{}, nil
	}
}

// GetToken requests a token of tokenType for the service appliesTo.
func (p *Provider) GetToken(tokenType, appliesTo string, onSuccess func(requestID uint32, token string, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(tokenType) == 0 {
		return 0, BadParameter
	}
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) (string, error) {
		return b.GetToken(tokenType, appliesTo)
	})
}

// ClearToken forgets the token of tokenType for appliesTo.
func (p *Provider) ClearToken(tokenType, appliesTo string, onSuccess func(requestID uint32, _ struct{}, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(tokenType) == 0 {
		return 0, BadParameter
	}
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) (struct{}, error) {
		return struct{}{}, b.ClearToken(tokenType, appliesTo)
	})
}

// GetProperties requests the properties called names.
func (p *Provider) GetProperties(propertyType int, names []string,
	onSuccess func(requestID uint32, props []Property, cbData any), onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(names) == 0 {
		return 0, BadParameter
	}
	if len(names) > MaxProperties {
		return 0, TooManyNames
	}
	names = append([]string(nil), names...)
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) ([]Property, error) {
		return b.GetProperties(propertyType, names)
	})
}

// CreateData stores d, which must not exist yet.
func (p *Provider) CreateData(dataType, flags int, d Data, onSuccess func(requestID uint32, _ struct{}, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(d.Name) == 0 {
		return 0, BadParameter
	}
	d.Value = append([]byte(nil), d.Value...)
	return submit(p, onSuccess, onFailure, cbData, p.dataChange(dataType, d.Name, Created, func(b Backend) error {
		return b.CreateData(dataType, flags, d)
	}))
}

// GetData requests the data called name.
func (p *Provider) GetData(dataType, flags int, name string, onSuccess func(requestID uint32, d Data, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(name) == 0 {
		return 0, BadParameter
	}
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) (Data, error) {
		return b.GetData(dataType, flags, name)
	})
}

// SetData replaces the value of existing data.
func (p *Provider) SetData(dataType, flags int, d Data, onSuccess func(requestID uint32, _ struct{}, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(d.Name) == 0 {
		return 0, BadParameter
	}
	d.Value = append([]byte(nil), d.Value...)
	return submit(p, onSuccess, onFailure, cbData, p.dataChange(dataType, d.Name, Changed, func(b Backend) error {
		return b.SetData(dataType, flags, d)
	}))
}

// DeleteData removes the data called name.
func (p *Provider) DeleteData(dataType, flags int, name string, onSuccess func(requestID uint32, _ struct{}, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	if len(name) == 0 {
		return 0, BadParameter
	}
	return submit(p, onSuccess, onFailure, cbData, p.dataChange(dataType, name, Deleted, func(b Backend) error {
		return b.DeleteData(dataType, flags, name)
	}))
}

// ListData requests the names of the data of dataType.
func (p *Provider) ListData(dataType, flags int, onSuccess func(requestID uint32, names []string, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) ([]string, error) {
		return b.ListData(dataType, flags)
	})
}

// Challenge asks the provider to prove the user is present.
func (p *Provider) Challenge(challengeType, flags int, onSuccess func(requestID uint32, proof []byte, cbData any),
	onFailure FailureFunc, cbData any,
) (uint32, Result) {
	return submit(p, onSuccess, onFailure, cbData, func(b Backend) ([]byte, error) {
		return b.Challenge(challengeType, flags)
	})
}

// RegisterNotifier calls fn whenever the data called name of dataType is created,
// changed or deleted through any provider of the same name. An empty name watches
// every piece of data of dataType, a nil fn removes the notifiers of dataType and name.
func (p *Provider) RegisterNotifier(dataType int, name string, fn NotifierFunc, cbData any) Result {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return NotAllowed
	}
	if fn == nil {
		kept := p.notifiers[:0]
		for _, n := range p.notifiers {
			if n.dataType != dataType || n.name != name {
				kept = append(kept, n)
			}
		}
		p.notifiers = kept
	} else {
		p.notifiers = append(p.notifiers, notifier{dataType, name, fn, cbData})
	}
	watching := len(p.notifiers) > 0
	p.mu.Unlock()
	p.entry.watch(p, watching)
	return Success
}
