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

package paymentservice

import (
	"errors"
	"sync"

	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
	"github.com/panjf2000/bps/pkg/pool/goroutine"
)

// Host is the payment side, it serves requests on the worker pool.
type Host struct {
	hub  *service.Hub
	pool *goroutine.Pool

	mu    sync.RWMutex
	store Store
}

// NewHost returns a host backed by a MemoryStore.
func NewHost() *Host {
	return &Host{
		hub:   service.NewHub("paymentservice"),
		pool:  goroutine.Default(),
		store: NewMemoryStore(),
	}
}

// SetStore replaces the store serving the requests made from now on.
func (h *Host) SetStore(s Store) {
	h.mu.Lock()
	h.store = s
	h.mu.Unlock()
}

// Close hangs up on every channel.
func (h *Host) Close() {
	h.hub.Close()
}

func (h *Host) serve(d *service.Domain, code uint16, fn func(Store, *wire.Message) error) (uint32, error) {
	sub, err := service.SubscriptionOf(d, h.hub)
	if err != nil {
		return 0, err
	}
	h.mu.RLock()
	store := h.store
	h.mu.RUnlock()

	id := nextRequestID()
	err = h.pool.Submit(func() {
		m := wire.NewMessage(code).SetInt(attrRequestID, int64(id))
		if err := fn(store, m); err != nil {
			m = failure(code, id, err)
		} else {
			m.SetInt(attrResponse, int64(ResponseSuccess))
		}
		err := h.hub.Send(sub, m)
		if errors.Is(err, errorx.ErrFrameTooLarge) {
			err = h.hub.Send(sub, failure(code, id, err))
		}
		if err != nil {
			logging.Warnf("paymentservice: failed to answer request %d: %v", id, err)
		}
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func failure(code uint16, id uint32, err error) *wire.Message {
	eid := ErrorPaymentService
	var f *Failure
	if errors.As(err, &f) {
		eid = f.ID
	}
	return wire.NewMessage(code).
		SetInt(attrRequestID, int64(id)).
		SetInt(attrResponse, int64(ResponseFailure)).
		SetInt(attrErrorID, int64(eid)).
		Set(attrErrorText, err.Error())
}
