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

package hukdf

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panjf2000/bps/pkg/sb"
)

func unhex(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

// RFC 5869, test case 1.
func TestHKDF(t *testing.T) {
	ikm := unhex(t, "0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b0b")
	salt := unhex(t, "000102030405060708090a0b0c")
	info := unhex(t, "f0f1f2f3f4f5f6f7f8f9")
	okm := make([]byte, 42)
	require.NoError(t, Derive(HKDFSHA256, ikm, salt, info, okm))
	assert.Equal(t, "3cb25f25faacd57a90434f64d0362f2a2d2d0a90cf1a5a4c5db02d56ecc4c5bf34007208d5b887185865", hex.EncodeToString(okm))
}

func TestCounterKDF(t *testing.T) {
	secret := []byte("shared secret")
	info := []byte("info")

	x963 := make([]byte, 40)
	require.NoError(t, Derive(X963SHA256, secret, nil, info, x963))

	h := sha256.New()
	h.Write(secret)
	h.Write([]byte{0, 0, 0, 1})
	h.Write(info)
	first := h.Sum(nil)
	h.Reset()
	h.Write(secret)
	h.Write([]byte{0, 0, 0, 2})
	h.Write(info)
	second := h.Sum(nil)
	assert.Equal(t, append(first, second[:8]...), x963)

	kdf2 := make([]byte, 40)
	require.NoError(t, Derive(KDF2SHA256, secret, nil, info, kdf2))
	assert.Equal(t, x963, kdf2)

	kdf1 := make([]byte, 40)
	require.NoError(t, Derive(KDF1SHA256, secret, nil, info, kdf1))
	assert.NotEqual(t, x963, kdf1)
	// KDF1 is one block behind X9.63.
	assert.Equal(t, first[:8], kdf1[32:40])
}

func TestDeriveErrors(t *testing.T) {
	assert.ErrorIs(t, Derive(HKDFSHA256, []byte("s"), nil, nil, nil), sb.ErrBadOutputBufLen)
	assert.ErrorIs(t, Derive(HKDFSHA256, nil, nil, nil, make([]byte, 8)), sb.ErrBadInput)
	assert.ErrorIs(t, Derive(HKDFSHA256, []byte("s"), nil, nil, make([]byte, 255*32+1)), sb.ErrBadOutputBufLen)
	assert.ErrorIs(t, Derive(Alg(42), []byte("s"), nil, nil, make([]byte, 8)), sb.ErrUnsupportedAlg)
}
