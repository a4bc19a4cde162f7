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

// Package humac computes message authentication codes incrementally.
package humac

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/panjf2000/bps/pkg/sb"
)

// Alg selects a MAC.
type Alg int

const (
	HMACSHA1 Alg = iota
	HMACSHA256
	HMACSHA512
	// BLAKE2b256 is keyed BLAKE2b with a 32-byte tag, keys are at most 64 bytes.
	BLAKE2b256
)

// Context is a MAC computation in progress.
type Context struct {
	alg Alg
	h   hash.Hash
}

// Begin starts a MAC computation with key.
func Begin(alg Alg, key []byte) (*Context, error) {
	var h hash.Hash
	switch alg {
	case HMACSHA1:
		h = hmac.New(sha1.New, key)
	case HMACSHA256:
		h = hmac.New(sha256.New, key)
	case HMACSHA512:
		h = hmac.New(sha512.New, key)
	case BLAKE2b256:
		var err error
		if h, err = blake2b.New256(key); err != nil {
			return nil, sb.ErrBadInput
		}
	default:
		return nil, sb.ErrUnsupportedAlg
	}
	return &Context{alg: alg, h: h}, nil
}

// Alg returns the algorithm of c.
func (c *Context) Alg() Alg {
	return c.alg
}

// Update feeds p into the computation.
func (c *Context) Update(p []byte) error {
	if c == nil || c.h == nil {
		return sb.ErrDestroyed
	}
	c.h.Write(p)
	return nil
}

// TagGet writes the tag of what was fed so far into dst, following the two-pass
// convention. More data may be fed afterwards.
func (c *Context) TagGet(dst []byte) (int, error) {
	if c == nil || c.h == nil {
		return 0, sb.ErrDestroyed
	}
	return sb.Sized(dst, c.h.Size(), func(out []byte) error {
		c.h.Sum(out[:0])
		return nil
	})
}

// End releases c, it can't be used afterwards.
func (c *Context) End() error {
	if c == nil || c.h == nil {
		return sb.ErrDestroyed
	}
	c.h.Reset()
	c.h = nil
	return nil
}

// Sum computes the tag of msg in one go.
func Sum(alg Alg, key, msg, dst []byte) (int, error) {
	c, err := Begin(alg, key)
	if err != nil {
		return 0, err
	}
	defer c.End() //nolint:errcheck
	_ = c.Update(msg)
	return c.TagGet(dst)
}
