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

// Package navigator delivers the events the navigator sends to an application,
// window state changes, swipes, invocations and the orientation handshake, and
// lets the application ask the navigator for things in return.
package navigator

import (
	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

// Event codes.
const (
	Invoke            uint16 = 0x01
	Exit              uint16 = 0x02
	WindowState       uint16 = 0x03
	SwipeDown         uint16 = 0x04
	SwipeStart        uint16 = 0x05
	LowMemory         uint16 = 0x06
	OrientationCheck  uint16 = 0x07
	Orientation       uint16 = 0x08
	Back              uint16 = 0x09
	WindowActive      uint16 = 0x0a
	WindowInactive    uint16 = 0x0b
	OrientationDone   uint16 = 0x0c
	OrientationResult uint16 = 0x0d
	WindowLock        uint16 = 0x0e
	WindowUnlock      uint16 = 0x0f
)

// Window is the state carried by WindowState events.
type Window int

const (
	WindowFullscreen Window = iota
	WindowThumbnail
	WindowInvisible
)

// Edge is the screen edge that becomes the top after a rotation.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeRight
	EdgeBottom
	EdgeLeft
)

const (
	attrID     = "id"
	attrURI    = "uri"
	attrState  = "state"
	attrAngle  = "angle"
	attrEdge   = "edge"
	attrResult = "result"
)

var (
	domain      service.Domain
	defaultHost = NewHost()
)

// DefaultHost returns the navigator every application talks to.
func DefaultHost() *Host {
	return defaultHost
}

// GetDomain returns the domain of navigator events.
func GetDomain() int {
	return domain.Get()
}

// RequestEvents starts delivering navigator events to the active channel.
func RequestEvents(flags int) error {
	return service.RequestEvents(&domain, defaultHost.hub, flags)
}

// StopEvents stops delivering navigator events to the active channel.
func StopEvents(flags int) error {
	return service.StopEvents(&domain, flags)
}

// InvokeURL asks the navigator to open url.
func InvokeURL(url string) error {
	if len(url) == 0 {
		return errorx.ErrInvalidArgument
	}
	return defaultHost.invoke(url)
}

// RequestExit asks the navigator to close the application, an Exit event follows.
func RequestExit() error {
	sub, err := service.SubscriptionOf(&domain, defaultHost.hub)
	if err != nil {
		return err
	}
	return defaultHost.hub.Send(sub, wire.NewMessage(Exit))
}

// SetOrientation asks the navigator to rotate the application to angle.
// The OrientationResult event answering it carries the returned id.
func SetOrientation(angle int) (string, error) {
	if !validAngle(angle) {
		return "", errorx.ErrInvalidArgument
	}
	sub, err := service.SubscriptionOf(&domain, defaultHost.hub)
	if err != nil {
		return "", err
	}
	return defaultHost.setOrientation(sub, angle)
}

// OrientationCheckResponse answers an OrientationCheck event, an Orientation event
// follows when willRotate is true.
func OrientationCheckResponse(ev *bps.Event, willRotate bool) error {
	id, sub, err := rotationOf(ev, OrientationCheck)
	if err != nil {
		return err
	}
	return defaultHost.checkResponse(sub, id, willRotate)
}

// DoneOrientation tells the navigator that the application has finished the
// rotation announced by an Orientation event.
func DoneOrientation(ev *bps.Event) error {
	id, sub, err := rotationOf(ev, Orientation)
	if err != nil {
		return err
	}
	return defaultHost.done(sub, id)
}

func rotationOf(ev *bps.Event, code uint16) (string, *service.Subscription, error) {
	m, err := message(ev)
	if err != nil {
		return "", nil, err
	}
	if m.Code != code {
		return "", nil, errorx.ErrInvalidEvent
	}
	id, err := m.String(attrID)
	if err != nil {
		return "", nil, err
	}
	sub, err := service.SubscriptionOf(&domain, defaultHost.hub)
	return id, sub, err
}

func message(ev *bps.Event) (*wire.Message, error) {
	return service.Message(ev, domain.Get())
}

// EventGetID returns the id of an orientation or invoke event.
func EventGetID(ev *bps.Event) (string, error) {
	m, err := message(ev)
	if err != nil {
		return "", err
	}
	return m.String(attrID)
}

// InvokeEventGetURI returns the URI of an Invoke event.
func InvokeEventGetURI(ev *bps.Event) (string, error) {
	m, err := message(ev)
	if err != nil {
		return "", err
	}
	return m.String(attrURI)
}

// EventGetWindowState returns the state of a WindowState event.
func EventGetWindowState(ev *bps.Event) (Window, error) {
	m, err := message(ev)
	if err != nil {
		return 0, err
	}
	n, err := m.Int(attrState)
	return Window(n), err
}

// EventGetOrientationAngle returns the angle of an orientation event.
func EventGetOrientationAngle(ev *bps.Event) (int, error) {
	m, err := message(ev)
	if err != nil {
		return 0, err
	}
	n, err := m.Int(attrAngle)
	return int(n), err
}

// EventGetOrientationEdge returns the edge of an orientation event.
func EventGetOrientationEdge(ev *bps.Event) (Edge, error) {
	m, err := message(ev)
	if err != nil {
		return 0, err
	}
	n, err := m.Int(attrEdge)
	return Edge(n), err
}

// EventGetOrientationResult tells whether the rotation asked by SetOrientation happened.
func EventGetOrientationResult(ev *bps.Event) (bool, error) {
	m, err := message(ev)
	if err != nil {
		return false, err
	}
	return m.Bool(attrResult)
}

func validAngle(angle int) bool {
	switch angle {
	case 0, 90, 180, 270:
		return true
	}
	return false
}
