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

package navigator

import (
	"sync"

	"github.com/google/uuid"

	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// Host is the navigator side, it originates the events and handles what
// applications ask for.
type Host struct {
	hub *service.Hub

	mu        sync.Mutex
	rotations map[string]*rotation
	onInvoke  func(uri string) error
	onRotate  func(angle int) bool
}

type rotation struct {
	angle   int
	edge    Edge
	waiting int
}

// NewHost returns a navigator that accepts every request.
func NewHost() *Host {
	return &Host{
		hub:       service.NewHub("navigator"),
		rotations: make(map[string]*rotation),
	}
}

// OnInvoke sets what happens when an application calls InvokeURL.
func (h *Host) OnInvoke(fn func(uri string) error) {
	h.mu.Lock()
	h.onInvoke = fn
	h.mu.Unlock()
}

// OnSetOrientation sets the policy answering SetOrientation, nil accepts every angle.
func (h *Host) OnSetOrientation(fn func(angle int) bool) {
	h.mu.Lock()
	h.onRotate = fn
	h.mu.Unlock()
}

// Notify publishes an event that carries no data, such as SwipeDown or LowMemory.
func (h *Host) Notify(code uint16) error {
	if code < Invoke || code > WindowUnlock {
		return errorx.ErrInvalidArgument
	}
	return h.hub.Publish(wire.NewMessage(code))
}

// Invoke publishes an Invoke event for uri.
func (h *Host) Invoke(uri string) error {
	return h.hub.Publish(wire.NewMessage(Invoke).Set(attrID, uuid.NewString()).Set(attrURI, uri))
}

// SetWindowState publishes a WindowState event.
func (h *Host) SetWindowState(w Window) error {
	return h.hub.Publish(wire.NewMessage(WindowState).SetInt(attrState, int64(w)))
}

// Rotate starts the orientation handshake: every application receives an
// OrientationCheck and those answering yes receive the Orientation itself.
func (h *Host) Rotate(angle int, edge Edge) (string, error) {
	if !validAngle(angle) {
		return "", errorx.ErrInvalidArgument
	}
	id := uuid.NewString()
	h.mu.Lock()
	h.rotations[id] = &rotation{angle: angle, edge: edge, waiting: h.hub.Subscribers()}
	h.mu.Unlock()
	return id, h.hub.Publish(orientationMessage(OrientationCheck, id, angle, edge))
}

// Pending returns the number of rotations some application hasn't finished yet.
func (h *Host) Pending() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rotations)
}

// Subscribers returns the number of channels receiving navigator events.
func (h *Host) Subscribers() int {
	return h.hub.Subscribers()
}

// Close hangs up on every application.
func (h *Host) Close() {
	h.hub.Close()
}

func orientationMessage(code uint16, id string, angle int, edge Edge) *wire.Message {
	return wire.NewMessage(code).Set(attrID, id).SetInt(attrAngle, int64(angle)).SetInt(attrEdge, int64(edge))
}

func (h *Host) invoke(uri string) error {
	h.mu.Lock()
	fn := h.onInvoke
	h.mu.Unlock()
	if fn == nil {
		logging.Infof("navigator: invoke %s", uri)
		return nil
	}
	return fn(uri)
}

func (h *Host) setOrientation(sub *service.Subscription, angle int) (string, error) {
	h.mu.Lock()
	fn := h.onRotate
	h.mu.Unlock()
	ok := fn == nil || fn(angle)

	id := uuid.NewString()
	m := wire.NewMessage(OrientationResult).Set(attrID, id).SetInt(attrAngle, int64(angle)).SetBool(attrResult, ok)
	if err := h.hub.Send(sub, m); err != nil {
		return "", err
	}
	return id, nil
}

func (h *Host) checkResponse(sub *service.Subscription, id string, willRotate bool) error {
	h.mu.Lock()
	r, ok := h.rotations[id]
	if ok && !willRotate {
		h.finish(id, r)
	}
	h.mu.Unlock()
	if !ok {
		return errorx.ErrInvalidEvent
	}
	if !willRotate {
		return nil
	}
	return h.hub.Send(sub, orientationMessage(Orientation, id, r.angle, r.edge))
}

func (h *Host) done(sub *service.Subscription, id string) error {
	h.mu.Lock()
	r, ok := h.rotations[id]
	if ok {
		h.finish(id, r)
	}
	h.mu.Unlock()
	if !ok {
		return errorx.ErrInvalidEvent
	}
	return h.hub.Send(sub, orientationMessage(OrientationDone, id, r.angle, r.edge))
}

// finish must be called with h.mu held.
func (h *Host) finish(id string, r *rotation) {
	if r.waiting--; r.waiting <= 0 {
		delete(h.rotations, id)
	}
}
