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

// Package locale reports the language and country the user picked.
// Changes reach the channel through a sigevent rather than a file descriptor.
package locale

import (
	"sync"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/service"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// Info is the only event code of the service.
const Info uint16 = 0x01

// Locale is the payload of Info events.
type Locale struct {
	Language string
	Country  string
}

// String returns the locale in the language_COUNTRY form.
func (l Locale) String() string {
	if len(l.Country) == 0 {
		return l.Language
	}
	return l.Language + "_" + l.Country
}

var (
	domain      service.Domain
	defaultHost = NewHost("en", "US")
)

// DefaultHost returns the host whose locale the package reports.
func DefaultHost() *Host {
	return defaultHost
}

// GetDomain returns the domain of locale events.
func GetDomain() int {
	return domain.Get()
}

// Get returns the current language and country.
func Get() (language, country string, err error) {
	l := defaultHost.Locale()
	return l.Language, l.Country, nil
}

type watcher struct {
	host *Host
	id   int
	se   *bps.Sigevent

	mu      sync.Mutex
	pending []Locale
}

// watchSlot is the domain data of the locale service on a channel, the channel
// destroy handler is registered with the first watcher and serves every later one.
type watchSlot struct {
	w *watcher
}

func (s *watchSlot) onDestroy(any) {
	if s.w != nil {
		s.w.host.unwatch(s.w)
		s.w = nil
	}
}

func slotOf(id int) (*watchSlot, error) {
	data, err := bps.GetDomainData(id)
	if err != nil {
		return nil, err
	}
	s, _ := data.(*watchSlot)
	return s, nil
}

// RequestEvents starts delivering Info events to the active channel.
func RequestEvents(flags int) error {
	if flags < 0 {
		return errorx.ErrInvalidArgument
	}
	id, err := domain.ID()
	if err != nil {
		return err
	}
	s, err := slotOf(id)
	if err != nil {
		return err
	}
	if s != nil && s.w != nil {
		return errorx.ErrAlreadyRequested
	}

	w := &watcher{host: defaultHost, id: id}
	if w.se, err = bps.AddSigeventHandler(w.onDeliver, nil); err != nil {
		return err
	}
	if s == nil {
		s = new(watchSlot)
		if err = bps.RegisterChannelDestroyHandler(s.onDestroy, nil); err != nil {
			_ = bps.RemoveSigeventHandler(w.se)
			return err
		}
		if err = bps.SetDomainData(id, s); err != nil {
			_ = bps.RemoveSigeventHandler(w.se)
			return err
		}
	}
	s.w = w
	w.host.watch(w)
	return nil
}

// StopEvents stops delivering Info events to the active channel.
func StopEvents(flags int) error {
	if flags < 0 {
		return errorx.ErrInvalidArgument
	}
	id, err := domain.ID()
	if err != nil {
		return err
	}
	s, err := slotOf(id)
	if err != nil {
		return err
	}
	if s == nil || s.w == nil {
		return errorx.ErrNotRequested
	}
	w := s.w
	s.w = nil
	w.host.unwatch(w)
	return bps.RemoveSigeventHandler(w.se)
}

func (w *watcher) post(l Locale) {
	w.mu.Lock()
	w.pending = append(w.pending, l)
	w.mu.Unlock()
	if err := w.se.Deliver(); err != nil {
		logging.Debugf("locale: channel %d is gone: %v", w.se.Channel(), err)
	}
}

func (w *watcher) onDeliver(*bps.Sigevent, any) error {
	w.mu.Lock()
	pending := w.pending
	w.pending = nil
	w.mu.Unlock()
	for _, l := range pending {
		ev, err := bps.NewEvent(w.id, Info, l, nil)
		if err == nil {
			err = bps.PushEvent(ev)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func payload(ev *bps.Event) (Locale, error) {
	if ev == nil {
		return Locale{}, errorx.ErrNilEvent
	}
	l, ok := ev.Payload().(Locale)
	if ev.Domain() != domain.Get() || !ok {
		return Locale{}, errorx.ErrInvalidEvent
	}
	return l, nil
}

// EventGetLanguage returns the language of an Info event.
func EventGetLanguage(ev *bps.Event) (string, error) {
	l, err := payload(ev)
	return l.Language, err
}

// EventGetCountry returns the country of an Info event.
func EventGetCountry(ev *bps.Event) (string, error) {
	l, err := payload(ev)
	return l.Country, err
}

// EventGetLocale returns the language_COUNTRY form of an Info event.
func EventGetLocale(ev *bps.Event) (string, error) {
	l, err := payload(ev)
	if err != nil {
		return "", err
	}
	return l.String(), nil
}

// Host keeps the locale and notifies the channels watching it.
type Host struct {
	mu       sync.Mutex
	locale   Locale
	watchers map[*watcher]struct{}
}

// NewHost returns a host set to language and country.
func NewHost(language, country string) *Host {
	return &Host{locale: Locale{language, country}, watchers: make(map[*watcher]struct{})}
}

// Locale returns the current locale.
func (h *Host) Locale() Locale {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.locale
}

// Set changes the locale, every watching channel receives an Info event if it differs.
func (h *Host) Set(language, country string) error {
	if len(language) == 0 {
		return errorx.ErrInvalidArgument
	}
	l := Locale{language, country}
	h.mu.Lock()
	if h.locale == l {
		h.mu.Unlock()
		return nil
	}
	h.locale = l
	ws := make([]*watcher, 0, len(h.watchers))
	for w := range h.watchers {
		ws = append(ws, w)
	}
	h.mu.Unlock()

	for _, w := range ws {
		w.post(l)
	}
	return nil
}

// Watchers returns the number of channels watching the locale.
func (h *Host) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (h *Host) watch(w *watcher) {
	h.mu.Lock()
	h.watchers[w] = struct{}{}
	h.mu.Unlock()
}

func (h *Host) unwatch(w *watcher) {
	h.mu.Lock()
	delete(h.watchers, w)
	h.mu.Unlock()
}
