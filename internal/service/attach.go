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

	"github.com/panjf2000/bps"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// Attachment binds a Source to the channel it was attached on.
type Attachment struct {
	domain int
	src    Source
	flags  uint32
	closed bool
}

// slot is the domain data a service keeps on a channel. It outlives the attachments
// made through it, so the channel destroy handler is registered once per channel.
type slot struct {
	att *Attachment
}

func (s *slot) onDestroy(any) {
	if s.att != nil {
		s.att.close()
		s.att = nil
	}
}

func slotOf(domain int) (*slot, error) {
	data, err := bps.GetDomainData(domain)
	if err != nil {
		return nil, err
	}
	s, _ := data.(*slot)
	return s, nil
}

// Attach watches src on the active channel and turns each message it yields into
// an event of domain. Only messages whose code passes flags are delivered.
// src is closed when the attachment goes away, either through Detach or with the channel.
func Attach(domain int, src Source, flags uint32) (*Attachment, error) {
	s, err := slotOf(domain)
	if err != nil {
		return nil, err
	}
	if s != nil && s.att != nil {
		return nil, errorx.ErrAlreadyRequested
	}

	a := &Attachment{domain: domain, src: src, flags: flags}
	if err = bps.AddFD(src.FD(), bps.IOInput, a.onReadable, nil); err != nil {
		return nil, err
	}
	if s == nil {
		s = new(slot)
		if err = bps.RegisterChannelDestroyHandler(s.onDestroy, nil); err != nil {
			_ = bps.RemoveFD(src.FD())
			return nil, err
		}
		if err = bps.SetDomainData(domain, s); err != nil {
			_ = bps.RemoveFD(src.FD())
			return nil, err
		}
	}
	s.att = a
	return a, nil
}

// Lookup returns the attachment of domain on the active channel.
func Lookup(domain int) (*Attachment, error) {
	s, err := slotOf(domain)
	if err != nil {
		return nil, err
	}
	if s == nil || s.att == nil || s.att.closed {
		return nil, errorx.ErrNotRequested
	}
	return s.att, nil
}

// Detach stops delivering the events of domain on the active channel.
func Detach(domain int) error {
	a, err := Lookup(domain)
	if err != nil {
		return err
	}
	a.detach()
	return nil
}

// Source returns the attached source.
func (a *Attachment) Source() Source {
	return a.src
}

// Flags returns the code filter.
func (a *Attachment) Flags() uint32 {
	return a.flags
}

// Mask stops delivering the codes in flags, it reports whether anything is left to deliver.
func (a *Attachment) Mask(flags uint32) bool {
	if a.flags == 0 {
		a.flags = ^uint32(0)
	}
	a.flags &^= flags
	return a.flags != 0
}

func (a *Attachment) detach() {
	if a.closed {
		return
	}
	logging.Error(bps.RemoveFD(a.src.FD()))
	if s, err := slotOf(a.domain); err == nil && s != nil && s.att == a {
		s.att = nil
	}
	a.close()
}

func (a *Attachment) close() {
	if a.closed {
		return
	}
	a.closed = true
	if err := a.src.Close(); err != nil {
		logging.Warnf("failed to close the source of domain %d: %v", a.domain, err)
	}
}

func (a *Attachment) onReadable(_ int, _ bps.IOEvent, _ any) error {
	msgs, err := a.src.Read()
	for _, m := range msgs {
		if !Accepts(a.flags, m.Code) {
			continue
		}
		ev, e := bps.NewEvent(a.domain, m.Code, m, nil)
		if e == nil {
			e = bps.PushEvent(ev)
		}
		if e != nil {
			return e
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF):
		logging.Debugf("platform side of domain %d went away", a.domain)
		a.detach()
		return nil
	default:
		logging.Errorf("dropping the source of domain %d: %v", a.domain, err)
		a.detach()
		return err
	}
}
