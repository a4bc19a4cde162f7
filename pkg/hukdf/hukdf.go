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

// Package hukdf derives keys from shared secrets.
package hukdf

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/panjf2000/bps/pkg/sb"
)

// Alg selects a key derivation function.
type Alg int

const (
	// HKDFSHA256 is RFC 5869 HKDF over SHA-256.
	HKDFSHA256 Alg = iota
	// X963SHA256 is the ANSI X9.63 KDF over SHA-256, the counter starts at 1.
	X963SHA256
	// KDF1SHA256 is ISO 18033-2 KDF1 over SHA-256, the counter starts at 0.
	KDF1SHA256
	// KDF2SHA256 is ISO 18033-2 KDF2 over SHA-256, which matches X9.63.
	KDF2SHA256
)

func (a Alg) String() string {
	switch a {
	case HKDFSHA256:
		return "HKDF-SHA256"
	case X963SHA256:
		return "X9.63-SHA256"
	case KDF1SHA256:
		return "KDF1-SHA256"
	case KDF2SHA256:
		return "KDF2-SHA256"
	}
	return "unknown"
}

// Derive fills dst with key material derived from secret. salt is only used by HKDF,
// info is the shared info of the counter-based functions.
func Derive(alg Alg, secret, salt, info, dst []byte) error {
	if len(dst) == 0 {
		return sb.ErrBadOutputBufLen
	}
	if len(secret) == 0 {
		return sb.ErrBadInput
	}
	switch alg {
	case HKDFSHA256:
		if len(dst) > 255*sha256.Size {
			return sb.ErrBadOutputBufLen
		}
		_, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), dst)
		return err
	case X963SHA256, KDF2SHA256:
		counterKDF(secret, info, 1, dst)
		return nil
	case KDF1SHA256:
		counterKDF(secret, info, 0, dst)
		return nil
	}
	return sb.ErrUnsupportedAlg
}

// counterKDF concatenates SHA-256(secret || counter || info) blocks.
func counterKDF(secret, info []byte, counter uint32, dst []byte) {
	h := sha256.New()
	var ctr [4]byte
	sum := make([]byte, 0, sha256.Size)
	for off := 0; off < len(dst); counter++ {
		h.Reset()
		h.Write(secret)
		binary.BigEndian.PutUint32(ctr[:], counter)
		h.Write(ctr[:])
		h.Write(info)
		off += copy(dst[off:], h.Sum(sum[:0]))
	}
}
