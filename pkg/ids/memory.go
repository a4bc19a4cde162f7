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
	"crypto/rand"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Backend serves the requests of a provider. Its methods run on worker goroutines
// and may be called concurrently. Returning an *Error picks the Result the failure
// callback receives, any other error is reported as Failure.
type Backend interface {
	GetToken(tokenType, appliesTo string) (string, error)
	ClearToken(tokenType, appliesTo string) error
	GetProperties(propertyType int, names []string) ([]Property, error)
	CreateData(dataType, flags int, d Data) error
	GetData(dataType, flags int, name string) (Data, error)
	SetData(dataType, flags int, d Data) error
	DeleteData(dataType, flags int, name string) error
	ListData(dataType, flags int) ([]string, error)
	Challenge(challengeType, flags int) ([]byte, error)
}

// ChallengeSize is the length of the proofs MemoryBackend hands out.
const ChallengeSize = 32

type tokenKey struct {
	tokenType string
	appliesTo string
}

// MemoryBackend keeps everything in memory, its tokens are random UUIDs.
type MemoryBackend struct {
	mu     sync.Mutex
	props  map[string]string
	tokens map[tokenKey]string
	data   map[int]map[string][]byte
}

// NewMemoryBackend returns a backend that knows the properties in props.
func NewMemoryBackend(props map[string]string) *MemoryBackend {
	b := &MemoryBackend{
		props:  make(map[string]string, len(props)),
		tokens: make(map[tokenKey]string),
		data:   make(map[int]map[string][]byte),
	}
	for k, v := range props {
		b.props[k] = v
	}
	return b
}

// SetProperty sets a property of the user.
func (b *MemoryBackend) SetProperty(name, value string) {
	b.mu.Lock()
	b.props[name] = value
	b.mu.Unlock()
}

// GetToken returns the token of tokenType for appliesTo, issuing one if needed.
func (b *MemoryBackend) GetToken(tokenType, appliesTo string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := tokenKey{tokenType, appliesTo}
	tok, ok := b.tokens[k]
	if !ok {
		tok = uuid.NewString()
		b.tokens[k] = tok
	}
	return tok, nil
}

// ClearToken forgets a token, the next GetToken issues a new one.
func (b *MemoryBackend) ClearToken(tokenType, appliesTo string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	k := tokenKey{tokenType, appliesTo}
	if _, ok := b.tokens[k]; !ok {
		return &Error{NameNotFound, tokenType}
	}
	delete(b.tokens, k)
	return nil
}

// GetProperties returns the properties called names, in the same order.
func (b *MemoryBackend) GetProperties(_ int, names []string) ([]Property, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	props := make([]Property, 0, len(names))
	for _, name := range names {
		v, ok := b.props[name]
		if !ok {
			return nil, &Error{NameNotFound, name}
		}
		props = append(props, Property{name, v})
	}
	return props, nil
}

// CreateData stores d, it fails if d exists.
func (b *MemoryBackend) CreateData(dataType, _ int, d Data) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	m := b.data[dataType]
	if m == nil {
		m = make(map[string][]byte)
		b.data[dataType] = m
	}
	if _, ok := m[d.Name]; ok {
		return &Error{AlreadyExists, d.Name}
	}
	m[d.Name] = d.Value
	return nil
}

// GetData returns the data called name.
func (b *MemoryBackend) GetData(dataType, _ int, name string) (Data, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[dataType][name]
	if !ok {
		return Data{}, &Error{NameNotFound, name}
	}
	return Data{name, append([]byte(nil), v...)}, nil
}

// SetData replaces existing data.
func (b *MemoryBackend) SetData(dataType, _ int, d Data) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[dataType][d.Name]; !ok {
		return &Error{NameNotFound, d.Name}
	}
	b.data[dataType][d.Name] = d.Value
	return nil
}

// DeleteData removes the data called name.
func (b *MemoryBackend) DeleteData(dataType, _ int, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.data[dataType][name]; !ok {
		return &Error{NameNotFound, name}
	}
	delete(b.data[dataType], name)
	return nil
}

// ListData returns the sorted names of the data of dataType.
func (b *MemoryBackend) ListData(dataType, _ int) ([]string, error) {
	b.mu.Lock()
	names := make([]string, 0, len(b.data[dataType]))
	for name := range b.data[dataType] {
		names = append(names, name)
	}
	b.mu.Unlock()
	slices.Sort(names)
	return names, nil
}

// Challenge returns ChallengeSize random bytes.
func (b *MemoryBackend) Challenge(int, int) ([]byte, error) {
	proof := make([]byte, ChallengeSize)
	if _, err := rand.Read(proof); err != nil {
		return nil, err
	}
	return proof, nil
}
