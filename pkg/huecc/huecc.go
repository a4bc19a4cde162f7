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

// Package huecc provides elliptic curve key agreement, signatures and encryption.
//
// Keys are created from a Params object and keep it busy: the Params can only be
// destroyed once every key created from it has been destroyed.
package huecc

import (
	"crypto/ecdh"
	"crypto/rand"
	"io"
	"sync"

	"github.com/panjf2000/bps/pkg/sb"
)

// Curve identifies an elliptic curve.
type Curve int

const (
	P256 Curve = iota
	P384
	P521
	// X25519 only supports key agreement and encryption.
	X25519
)

func (c Curve) ecdh() ecdh.Curve {
	switch c {
	case P256:
		return ecdh.P256()
	case P384:
		return ecdh.P384()
	case P521:
		return ecdh.P521()
	case X25519:
		return ecdh.X25519()
	}
	return nil
}

func (c Curve) String() string {
	switch c {
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case P521:
		return "P-521"
	case X25519:
		return "X25519"
	}
	return "unknown"
}

// Params binds a curve to a random source.
type Params struct {
	curve Curve
	ec    ecdh.Curve
	rng   io.Reader

	mu        sync.Mutex
	keys      int
	destroyed bool
}

// NewParams returns parameters for curve, a nil rng uses crypto/rand.
func NewParams(curve Curve, rng io.Reader) (*Params, error) {
	ec := curve.ecdh()
	if ec == nil {
		return nil, sb.ErrBadCurve
	}
	if rng == nil {
		rng = rand.Reader
	}
	return &Params{curve: curve, ec: ec, rng: rng}, nil
}

// Curve returns the curve of p.
func (p *Params) Curve() Curve {
	return p.curve
}

// Destroy releases p, it fails while keys created from p are alive.
func (p *Params) Destroy() error {
	if p == nil {
		return sb.ErrNullParams
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return sb.ErrDestroyed
	}
	if p.keys > 0 {
		return sb.ErrParamsInUse
	}
	p.destroyed = true
	return nil
}

func (p *Params) acquire(n int) error {
	if p == nil {
		return sb.ErrNullParams
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.destroyed {
		return sb.ErrDestroyed
	}
	p.keys += n
	return nil
}

func (p *Params) release() {
	p.mu.Lock()
	p.keys--
	p.mu.Unlock()
}

// PrivateKey is a private key bound to its Params.
type PrivateKey struct {
	params *Params
	key    *ecdh.PrivateKey
}

// PublicKey is a public key bound to its Params.
type PublicKey struct {
	params *Params
	key    *ecdh.PublicKey
}

// GenerateKeyPair creates a fresh key pair.
func (p *Params) GenerateKeyPair() (*PrivateKey, *PublicKey, error) {
	if err := p.acquire(0); err != nil {
		return nil, nil, err
	}
	k, err := p.ec.GenerateKey(p.rng)
	if err != nil {
		return nil, nil, err
	}
	if err = p.acquire(2); err != nil {
		return nil, nil, err
	}
	return &PrivateKey{p, k}, &PublicKey{p, k.PublicKey()}, nil
}

// SetPrivateKey imports a private scalar in its fixed-length big-endian encoding.
func (p *Params) SetPrivateKey(b []byte) (*PrivateKey, error) {
	if err := p.acquire(0); err != nil {
		return nil, err
	}
	k, err := p.ec.NewPrivateKey(b)
	if err != nil {
		return nil, sb.ErrBadInput
	}
	if err = p.acquire(1); err != nil {
		return nil, err
	}
	return &PrivateKey{p, k}, nil
}

// SetPublicKey imports an uncompressed point, or the 32-byte u-coordinate for X25519.
func (p *Params) SetPublicKey(b []byte) (*PublicKey, error) {
	if err := p.acquire(0); err != nil {
		return nil, err
	}
	k, err := p.ec.NewPublicKey(b)
	if err != nil {
		return nil, sb.ErrBadInput
	}
	if err = p.acquire(1); err != nil {
		return nil, err
	}
	return &PublicKey{p, k}, nil
}

// ExpandPrivateKey derives the public key of priv.
func ExpandPrivateKey(priv *PrivateKey) (*PublicKey, error) {
	if err := priv.check(); err != nil {
		return nil, err
	}
	if err := priv.params.acquire(1); err != nil {
		return nil, err
	}
	return &PublicKey{priv.params, priv.key.PublicKey()}, nil
}

func (k *PrivateKey) check() error {
	if k == nil {
		return sb.ErrNullKey
	}
	if k.key == nil {
		return sb.ErrDestroyed
	}
	return nil
}

func (k *PublicKey) check() error {
	if k == nil {
		return sb.ErrNullKey
	}
	if k.key == nil {
		return sb.ErrDestroyed
	}
	return nil
}

// Get writes the encoded private scalar into dst, following the two-pass convention.
func (k *PrivateKey) Get(dst []byte) (int, error) {
	if err := k.check(); err != nil {
		return 0, err
	}
	return sb.CopyOut(dst, k.key.Bytes())
}

// Get writes the encoded point into dst, following the two-pass convention.
func (k *PublicKey) Get(dst []byte) (int, error) {
	if err := k.check(); err != nil {
		return 0, err
	}
	return sb.CopyOut(dst, k.key.Bytes())
}

// Params returns the parameters k was created from.
func (k *PrivateKey) Params() *Params {
	return k.params
}

// Params returns the parameters k was created from.
func (k *PublicKey) Params() *Params {
	return k.params
}

// Destroy releases k, exactly once.
func (k *PrivateKey) Destroy() error {
	if err := k.check(); err != nil {
		return err
	}
	k.key = nil
	k.params.release()
	return nil
}

// Destroy releases k, exactly once.
func (k *PublicKey) Destroy() error {
	if err := k.check(); err != nil {
		return err
	}
	k.key = nil
	k.params.release()
	return nil
}

func pair(priv *PrivateKey, pub *PublicKey) error {
	if err := priv.check(); err != nil {
		return err
	}
	if err := pub.check(); err != nil {
		return err
	}
	if priv.params.curve != pub.params.curve {
		return sb.ErrBadCurve
	}
	return nil
}

// ECDH writes the shared secret of priv and pub into dst, following the two-pass convention.
func ECDH(priv *PrivateKey, pub *PublicKey, dst []byte) (int, error) {
	if err := pair(priv, pub); err != nil {
		return 0, err
	}
	secret, err := priv.key.ECDH(pub.key)
	if err != nil {
		return 0, sb.ErrBadInput
	}
	return sb.CopyOut(dst, secret)
}
