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

// Package wire encodes the notifications that platform services hand over to
// channels through pipes.
//
// A frame is laid out as:
//
//	size u16 | code u16 | count u16 | count * (klen u16 | key | vlen u16 | value)
//
// with big-endian integers, where size covers the whole frame. Frames never exceed
// MaxFrameSize so that a single write(2) to a pipe stays atomic.
package wire

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/valyala/bytebufferpool"

	errorx "github.com/panjf2000/bps/pkg/errors"
)

// MaxFrameSize is PIPE_BUF on Linux.
const MaxFrameSize = 4096

const headerSize = 6

// Attr is a key/value pair carried by a Message.
type Attr struct {
	Key   string
	Value string
}

// Message is a decoded frame.
type Message struct {
	Code  uint16
	Attrs []Attr
}

// NewMessage returns an empty message with the given code.
func NewMessage(code uint16) *Message {
	return &Message{Code: code}
}

// Set sets key to value, replacing a previous value.
func (m *Message) Set(key, value string) *Message {
	for i := range m.Attrs {
		if m.Attrs[i].Key == key {
			m.Attrs[i].Value = value
			return m
		}
	}
	m.Attrs = append(m.Attrs, Attr{key, value})
	return m
}

// SetInt sets key to the decimal form of v.
func (m *Message) SetInt(key string, v int64) *Message {
	return m.Set(key, strconv.FormatInt(v, 10))
}

// SetBool sets key to "true" or "false".
func (m *Message) SetBool(key string, v bool) *Message {
	return m.Set(key, strconv.FormatBool(v))
}

// Lookup returns the value of key and whether it's present.
func (m *Message) Lookup(key string) (string, bool) {
	for _, a := range m.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// String returns the value of key.
func (m *Message) String(key string) (string, error) {
	v, ok := m.Lookup(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", errorx.ErrMissingAttribute, key)
	}
	return v, nil
}

// Int returns the value of key parsed as a decimal integer.
func (m *Message) Int(key string) (int64, error) {
	v, err := m.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", errorx.ErrMalformedFrame, key, err)
	}
	return n, nil
}

// Uint32 returns the value of key parsed as an unsigned 32-bit integer.
func (m *Message) Uint32(key string) (uint32, error) {
	v, err := m.String(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", errorx.ErrMalformedFrame, key, err)
	}
	return uint32(n), nil
}

// Bool returns the value of key parsed as a boolean.
func (m *Message) Bool(key string) (bool, error) {
	v, err := m.String(key)
	if err != nil {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", errorx.ErrMalformedFrame, key, err)
	}
	return b, nil
}

// Clone returns a deep copy of m.
func (m *Message) Clone() *Message {
	return &Message{Code: m.Code, Attrs: append([]Attr(nil), m.Attrs...)}
}

// Size returns the length of the encoded frame.
func (m *Message) Size() int {
	n := headerSize
	for _, a := range m.Attrs {
		n += 4 + len(a.Key) + len(a.Value)
	}
	return n
}

// Encode writes m as a frame into a pooled buffer, the caller must hand the buffer
// back with bytebufferpool.Put.
func Encode(m *Message) (*bytebufferpool.ByteBuffer, error) {
	size := m.Size()
	if size > MaxFrameSize || len(m.Attrs) > 0xffff {
		return nil, errorx.ErrFrameTooLarge
	}
	buf := bytebufferpool.Get()
	buf.B = binary.BigEndian.AppendUint16(buf.B, uint16(size))
	buf.B = binary.BigEndian.AppendUint16(buf.B, m.Code)
	buf.B = binary.BigEndian.AppendUint16(buf.B, uint16(len(m.Attrs)))
	for _, a := range m.Attrs {
		buf.B = binary.BigEndian.AppendUint16(buf.B, uint16(len(a.Key)))
		buf.B = append(buf.B, a.Key...)
		buf.B = binary.BigEndian.AppendUint16(buf.B, uint16(len(a.Value)))
		buf.B = append(buf.B, a.Value...)
	}
	return buf, nil
}

// Decoder splits a byte stream into messages.
type Decoder struct {
	buf []byte
}

// Feed appends p to the undecoded bytes.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Buffered returns the number of bytes that don't form a complete frame yet.
func (d *Decoder) Buffered() int {
	return len(d.buf)
}

// Next returns the next complete message, or nil if more bytes are needed.
func (d *Decoder) Next() (*Message, error) {
	if len(d.buf) < headerSize {
		return nil, nil
	}
	size := int(binary.BigEndian.Uint16(d.buf))
	if size < headerSize {
		return nil, errorx.ErrMalformedFrame
	}
	if len(d.buf) < size {
		return nil, nil
	}
	frame := d.buf[:size]
	m, err := decodeFrame(frame)
	d.buf = d.buf[size:]
	if len(d.buf) == 0 {
		d.buf = d.buf[:0:0]
	}
	return m, err
}

func decodeFrame(frame []byte) (*Message, error) {
	m := &Message{Code: binary.BigEndian.Uint16(frame[2:])}
	count := int(binary.BigEndian.Uint16(frame[4:]))
	p := frame[headerSize:]
	next := func() (string, bool) {
		if len(p) < 2 {
			return "", false
		}
		n := int(binary.BigEndian.Uint16(p))
		if len(p) < 2+n {
			return "", false
		}
		s := string(p[2 : 2+n])
		p = p[2+n:]
		return s, true
	}
	m.Attrs = make([]Attr, 0, count)
	for i := 0; i < count; i++ {
		k, ok := next()
		if !ok {
			return nil, errorx.ErrMalformedFrame
		}
		v, ok := next()
		if !ok {
			return nil, errorx.ErrMalformedFrame
		}
		m.Attrs = append(m.Attrs, Attr{k, v})
	}
	if len(p) != 0 {
		return nil, errorx.ErrMalformedFrame
	}
	return m, nil
}
