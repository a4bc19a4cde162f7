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

// Package removablemedia tracks SD cards and USB drives as they come and go.
package removablemedia

import (
	"cmp"
	"slices"
	"strconv"
	"sync"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/handle"
	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

// Info is the only event code of the service, sent on every state change of a device.
const Info uint16 = 0x01

// State of a device.
type State int

const (
	StateRemoved State = iota
	StateInserted
	StateMounted
	StateUnmounted
	StateUnsupported
)

// Type of a device.
type Type int

const (
	TypeSD Type = iota
	TypeUSB
)

// Media describes a device.
type Media struct {
	Device     string
	MountPath  string
	Filesystem string
	State      State
	Type       Type
}

const (
	attrDevice     = "device"
	attrMountPath  = "path"
	attrFilesystem = "fs"
	attrState      = "state"
	attrType       = "type"
)

var (
	domain      service.Domain
	defaultHost = NewHost()
	lists       handle.Table[Details]
)

// DefaultHost returns the host whose devices the package reports.
func DefaultHost() *Host {
	return defaultHost
}

// GetDomain returns the domain of removable media events.
func GetDomain() int {
	return domain.Get()
}

// RequestEvents starts delivering Info events to the active channel.
func RequestEvents(flags int) error {
	return service.RequestEvents(&domain, defaultHost.hub, flags)
}

// StopEvents stops delivering Info events to the active channel.
func StopEvents(flags int) error {
	return service.StopEvents(&domain, flags)
}

// Details is a node of the list GetInfo returns.
type Details struct {
	media Media
	head  *Details
	next  *Details
}

// GetInfo returns the known devices as a list ordered by device, nil when there is none.
// The whole list is released by passing its head to FreeInfo.
func GetInfo() (*Details, error) {
	media := defaultHost.Devices()
	if len(media) == 0 {
		return nil, nil
	}
	nodes := make([]Details, len(media))
	for i := range media {
		nodes[i].media = media[i]
		nodes[i].head = &nodes[0]
		if i+1 < len(nodes) {
			nodes[i].next = &nodes[i+1]
		}
	}
	return lists.Add(&nodes[0]), nil
}

// FreeInfo releases the list headed by info, exactly once.
func FreeInfo(info *Details) error {
	if info == nil || info.head != info {
		return errorx.ErrInvalidHandle
	}
	return lists.Free(info)
}

func (d *Details) get() (*Media, error) {
	if d == nil {
		return nil, errorx.ErrInvalidHandle
	}
	if err := lists.Check(d.head); err != nil {
		return nil, err
	}
	return &d.media, nil
}

// Next returns the following node, nil at the end of the list.
func (d *Details) Next() (*Details, error) {
	if _, err := d.get(); err != nil {
		return nil, err
	}
	return d.next, nil
}

// Device returns the device name.
func (d *Details) Device() (string, error) {
	m, err := d.get()
	if err != nil {
		return "", err
	}
	return m.Device, nil
}

// MountPath returns where the device is mounted.
func (d *Details) MountPath() (string, error) {
	m, err := d.get()
	if err != nil {
		return "", err
	}
	return m.MountPath, nil
}

// Filesystem returns the filesystem of the device.
func (d *Details) Filesystem() (string, error) {
	m, err := d.get()
	if err != nil {
		return "", err
	}
	return m.Filesystem, nil
}

// State returns the state of the device.
func (d *Details) State() (State, error) {
	m, err := d.get()
	if err != nil {
		return StateRemoved, err
	}
	return m.State, nil
}

// Type returns the type of the device.
func (d *Details) Type() (Type, error) {
	m, err := d.get()
	if err != nil {
		return TypeSD, err
	}
	return m.Type, nil
}

// EventGetMedia returns the device an Info event is about.
func EventGetMedia(ev *bps.Event) (Media, error) {
	m, err := service.Message(ev, domain.Get())
	if err != nil {
		return Media{}, err
	}
	var media Media
	if media.Device, err = m.String(attrDevice); err != nil {
		return Media{}, err
	}
	state, err := m.Int(attrState)
	if err != nil {
		return Media{}, err
	}
	typ, err := m.Int(attrType)
	if err != nil {
		return Media{}, err
	}
	media.State, media.Type = State(state), Type(typ)
	media.MountPath, _ = m.Lookup(attrMountPath)
	media.Filesystem, _ = m.Lookup(attrFilesystem)
	return media, nil
}

// Host keeps the devices and publishes their changes.
type Host struct {
	hub *service.Hub

	mu      sync.Mutex
	devices map[string]Media
}

// NewHost returns a host without devices.
func NewHost() *Host {
	return &Host{hub: service.NewHub("removablemedia"), devices: make(map[string]Media)}
}

// Update records m and publishes it, a removed device is forgotten.
func (h *Host) Update(m Media) error {
	if len(m.Device) == 0 {
		return errorx.ErrInvalidArgument
	}
	h.mu.Lock()
	if m.State == StateRemoved {
		delete(h.devices, m.Device)
	} else {
		h.devices[m.Device] = m
	}
	h.mu.Unlock()

	msg := wire.NewMessage(Info).
		Set(attrDevice, m.Device).
		Set(attrState, strconv.Itoa(int(m.State))).
		Set(attrType, strconv.Itoa(int(m.Type)))
	if len(m.MountPath) > 0 {
		msg.Set(attrMountPath, m.MountPath)
	}
	if len(m.Filesystem) > 0 {
		msg.Set(attrFilesystem, m.Filesystem)
	}
	return h.hub.Publish(msg)
}

// Devices returns the known devices ordered by name.
func (h *Host) Devices() []Media {
	h.mu.Lock()
	media := make([]Media, 0, len(h.devices))
	for _, m := range h.devices {
		media = append(media, m)
	}
	h.mu.Unlock()
	slices.SortFunc(media, func(a, b Media) int { return cmp.Compare(a.Device, b.Device) })
	return media
}

// Close hangs up on every channel.
func (h *Host) Close() {
	h.hub.Close()
}
