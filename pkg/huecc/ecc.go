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

package huecc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/x509"
	"math/big"

	"github.com/panjf2000/bps/pkg/hukdf"
	"github.com/panjf2000/bps/pkg/sb"
)

// scalarLen is the length of r and s in a signature.
func (c Curve) scalarLen() int {
	switch c {
	case P256:
		return 32
	case P384:
		return 48
	case P521:
		return 66
	}
	return 0
}

// pointLen is the length of an encoded public key.
func (c Curve) pointLen() int {
	if c == X25519 {
		return 32
	}
	return 1 + 2*c.scalarLen()
}

func ecdsaPrivate(k *PrivateKey) (*ecdsa.PrivateKey, error) {
	der, err := x509.MarshalPKCS8PrivateKey(k.key)
	if err != nil {
		return nil, sb.ErrUnsupportedAlg
	}
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, sb.ErrUnsupportedAlg
	}
	sk, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, sb.ErrUnsupportedAlg
	}
	return sk, nil
}

func ecdsaPublic(k *PublicKey) (*ecdsa.PublicKey, error) {
	der, err := x509.MarshalPKIXPublicKey(k.key)
	if err != nil {
		return nil, sb.ErrUnsupportedAlg
	}
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, sb.ErrUnsupportedAlg
	}
	pk, ok := parsed.(*ecdsa.PublicKey)
	if !ok {
		return nil, sb.ErrUnsupportedAlg
	}
	return pk, nil
}

// ECDSASign signs digest with priv and writes r || s, each padded to the size of
// the curve order, into dst, following the two-pass convention.
func ECDSASign(priv *PrivateKey, digest, dst []byte) (int, error) {
	if err := priv.check(); err != nil {
		return 0, err
	}
	size := priv.params.curve.scalarLen()
	if size == 0 {
		return 0, sb.ErrUnsupportedAlg
	}
	if len(digest) == 0 {
		return 0, sb.ErrBadInput
	}
	return sb.Sized(dst, 2*size, func(out []byte) error {
		sk, err := ecdsaPrivate(priv)
		if err != nil {
			return err
		}
		r, s, err := ecdsa.Sign(priv.params.rng, sk, digest)
		if err != nil {
			return err
		}
		r.FillBytes(out[:size])
		s.FillBytes(out[size:])
		return nil
	})
}

// ECDSAVerify checks a signature made by ECDSASign.
func ECDSAVerify(pub *PublicKey, digest, sig []byte) error {
	if err := pub.check(); err != nil {
		return err
	}
	size := pub.params.curve.scalarLen()
	if size == 0 {
		return sb.ErrUnsupportedAlg
	}
	if len(sig) != 2*size || len(digest) == 0 {
		return sb.ErrBadInput
	}
	pk, err := ecdsaPublic(pub)
	if err != nil {
		return err
	}
	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])
	if !ecdsa.Verify(pk, digest, r, s) {
		return sb.ErrFailSignature
	}
	return nil
}

const tagSize = 16

// Every message is sealed under a key of its own.
var zeroNonce = make([]byte, 12)

func newAEAD(secret, ephemeral, recipient []byte) (cipher.AEAD, error) {
	info := make([]byte, 0, len(ephemeral)+len(recipient))
	info = append(append(info, ephemeral...), recipient...)
	key := make([]byte, 32)
	if err := hukdf.Derive(hukdf.HKDFSHA256, secret, nil, info, key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// ECIESEncrypt encrypts msg to pub and writes ephemeral key || ciphertext || tag into
// dst, following the two-pass convention.
func ECIESEncrypt(pub *PublicKey, msg, dst []byte) (int, error) {
	if err := pub.check(); err != nil {
		return 0, err
	}
	pl := pub.params.curve.pointLen()
	return sb.Sized(dst, pl+len(msg)+tagSize, func(out []byte) error {
		eph, err := pub.params.ec.GenerateKey(pub.params.rng)
		if err != nil {
			return err
		}
		secret, err := eph.ECDH(pub.key)
		if err != nil {
			return sb.ErrBadInput
		}
		ephPub := eph.PublicKey().Bytes()
		aead, err := newAEAD(secret, ephPub, pub.key.Bytes())
		if err != nil {
			return err
		}
		copy(out, ephPub)
		aead.Seal(out[pl:pl], zeroNonce, msg, nil)
		return nil
	})
}

// ECIESDecrypt decrypts what ECIESEncrypt produced for the public key of priv into
// dst, following the two-pass convention.
func ECIESDecrypt(priv *PrivateKey, ct, dst []byte) (int, error) {
	if err := priv.check(); err != nil {
		return 0, err
	}
	pl := priv.params.curve.pointLen()
	if len(ct) < pl+tagSize {
		return 0, sb.ErrBadInput
	}
	return sb.Sized(dst, len(ct)-pl-tagSize, func(out []byte) error {
		ephPub, err := priv.params.ec.NewPublicKey(ct[:pl])
		if err != nil {
			return sb.ErrBadInput
		}
		secret, err := priv.key.ECDH(ephPub)
		if err != nil {
			return sb.ErrBadInput
		}
		aead, err := newAEAD(secret, ct[:pl], priv.key.PublicKey().Bytes())
		if err != nil {
			return err
		}
		if _, err = aead.Open(out[:0], zeroNonce, ct[pl:], nil); err != nil {
			return sb.ErrFailDecrypt
		}
		return nil
	})
}
