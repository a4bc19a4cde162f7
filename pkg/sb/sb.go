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

// Package sb holds what the crypto packages share: their error values and the
// two-pass convention for variable-length output.
//
// Functions that produce output take a destination slice and return the number of
// bytes the output needs. Passing a nil destination only asks for that length,
// nothing is written. A destination that is too short yields ErrBadOutputBufLen
// along with the needed length.
package sb

import "errors"

var (
	// ErrNullParams occurs when a nil or destroyed parameter object is passed.
	ErrNullParams = errors.New("sb: nil parameters")
	// ErrNullKey occurs when a nil key is passed.
	ErrNullKey = errors.New("sb: nil key")
	// ErrBadInput occurs when the input is malformed or has the wrong length.
	ErrBadInput = errors.New("sb: bad input")
	// ErrBadOutputBufLen occurs when the output buffer is too short.
	ErrBadOutputBufLen = errors.New("sb: output buffer is too short")
	// ErrBadCurve occurs when keys of different curves are mixed, or the curve is unknown.
	ErrBadCurve = errors.New("sb: bad curve")
	// ErrFailSignature occurs when a signature doesn't verify.
	ErrFailSignature = errors.New("sb: signature verification failed")
	// ErrFailDecrypt occurs when a ciphertext doesn't authenticate.
	ErrFailDecrypt = errors.New("sb: decryption failed")
	// ErrDestroyed occurs when using an object after destroying it.
	ErrDestroyed = errors.New("sb: object has been destroyed")
	// ErrParamsInUse occurs when destroying parameters that still have live keys.
	ErrParamsInUse = errors.New("sb: parameters are still used by keys")
	// ErrUnsupportedAlg occurs when the algorithm is unknown or the curve can't do it.
	ErrUnsupportedAlg = errors.New("sb: unsupported algorithm")
)

// CopyOut copies src into dst following the two-pass convention, it returns len(src).
func CopyOut(dst, src []byte) (int, error) {
	if dst == nil {
		return len(src), nil
	}
	if len(dst) < len(src) {
		return len(src), ErrBadOutputBufLen
	}
	return copy(dst, src), nil
}

// Sized runs produce only when dst is big enough to hold n bytes.
// produce writes into dst[:n].
func Sized(dst []byte, n int, produce func(out []byte) error) (int, error) {
	if dst == nil {
		return n, nil
	}
	if len(dst) < n {
		return n, ErrBadOutputBufLen
	}
	if err := produce(dst[:n]); err != nil {
		return 0, err
	}
	return n, nil
}
