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

package service

import (
	"errors"
	"io"
	"sync"

	"github.com/eapache/queue"
	"github.com/valyala/bytebufferpool"

	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// Hub is the platform side of a service, it fans messages out to the channels
// that requested the events of the service.
type Hub struct {
	name string

	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub returns a hub, name shows up in logs.
func NewHub(name string) *Hub {
	return &Hub{name: name, subs: make(map[*Subscription]struct{})}
}

// Subscription is a pipe from a hub to one channel.
//
// Frames that Send cannot fit into a full pipe wait in the backlog, in order, and
// move into the pipe as the channel side reads. While the backlog is not empty every
// new frame goes behind it.
type Subscription struct {
	hub *Hub
	rfd int
	buf []byte
	dec wire.Decoder

	wmu     sync.Mutex
	wfd     int
	backlog *queue.Queue
	closed  bool
	hungUp  bool
}

// Subscribe opens a new pipe, the returned subscription is meant to be attached to a channel.
func (h *Hub) Subscribe() (*Subscription, error) {
	r, w, err := openPipe()
	if err != nil {
		return nil, err
	}
	s := &Subscription{hub: h, rfd: r, wfd: w, buf: make([]byte, wire.MaxFrameSize), backlog: queue.New()}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s, nil
}

// Subscribers returns the number of open subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish sends m to every subscriber. A subscriber that doesn't keep up loses m,
// the returned error then wraps ErrSubscriberBusy.
func (h *Hub) Publish(m *wire.Message) error {
	buf, err := wire.Encode(m)
	if err != nil {
		return err
	}
	defer bytebufferpool.Put(buf)

	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err = h.write(s, buf.B, m.Code, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Send sends m to s only. Unlike Publish it never drops m: when the pipe is full, m
// waits until the channel side has read what's ahead of it.
func (h *Hub) Send(s *Subscription, m *wire.Message) error {
	if s == nil || s.hub != h {
		return errorx.ErrInvalidArgument
	}
	buf, err := wire.Encode(m)
	if err != nil {
		return err
	}
	defer bytebufferpool.Put(buf)
	return h.write(s, buf.B, m.Code, true)
}

func (h *Hub) write(s *Subscription, b []byte, code uint16, keep bool) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.closed {
		return errorx.ErrNotRequested
	}
	err := errorx.ErrSubscriberBusy
	if s.backlog.Length() == 0 {
		err = writeFrame(s.wfd, b)
	}
	if !errors.Is(err, errorx.ErrSubscriberBusy) {
		return err
	}
	if keep {
		s.backlog.Add(append([]byte(nil), b...))
		return nil
	}
	logging.Warnf("%s: subscriber is full, dropped message with code %d", h.name, code)
	return err
}

// Close hangs up on every subscriber, each of them reads io.EOF after its pending messages.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()
	for s := range subs {
		s.hangUp()
	}
}

// FD returns the read end of the pipe.
func (s *Subscription) FD() int {
	return s.rfd
}

// Close closes both ends of the pipe, it must be called by the channel side.
// Frames still in the backlog are discarded.
func (s *Subscription) Close() error {
	s.hub.mu.Lock()
	delete(s.hub.subs, s)
	s.hub.mu.Unlock()

	s.wmu.Lock()
	s.closed = true
	for s.backlog.Length() > 0 {
		s.backlog.Remove()
	}
	s.shutWrite()
	s.wmu.Unlock()
	return closeFD(s.rfd)
}

// Backlog returns the number of frames waiting for room in the pipe.
func (s *Subscription) Backlog() int {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.backlog.Length()
}

// hangUp stops accepting frames, the write end is closed once the backlog is gone.
func (s *Subscription) hangUp() {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	s.closed = true
	if s.backlog.Length() == 0 {
		s.shutWrite()
	}
}

func (s *Subscription) shutWrite() {
	if !s.hungUp {
		s.hungUp = true
		logging.Error(closeFD(s.wfd))
	}
}

// flush moves backlogged frames into the pipe until it's full again.
func (s *Subscription) flush() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	for s.backlog.Length() > 0 {
		err := writeFrame(s.wfd, s.backlog.Peek().([]byte))
		if errors.Is(err, errorx.ErrSubscriberBusy) {
			return nil
		}
		if err != nil {
			return err
		}
		s.backlog.Remove()
	}
	if s.closed {
		s.shutWrite()
	}
	return nil
}

// Read decodes whatever the pipe holds, then refills the pipe from the backlog.
// Refilled frames keep the pipe readable, they come out of the next Read.
func (s *Subscription) Read() (msgs []*wire.Message, err error) {
	eof, err := s.fill()
	if err == nil && !eof {
		err = s.flush()
	}
	for {
		m, e := s.dec.Next()
		if e != nil {
			return msgs, e
		}
		if m == nil {
			break
		}
		msgs = append(msgs, m)
	}
	if err == nil && eof {
		if s.dec.Buffered() > 0 {
			return msgs, errorx.ErrMalformedFrame
		}
		return msgs, io.EOF
	}
	return msgs, err
}
