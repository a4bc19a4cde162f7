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

// Package netstatus reports whether the network is reachable and through which
// interface, both on demand and as events whenever that changes.
package netstatus

import (
	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/handle"
	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
)

// Info is the only event code of the service.
const Info uint16 = 0x01

const (
	attrAvailable = "available"
	attrInterface = "interface"
)

var (
	domain      service.Domain
	defaultHost = NewHost()
	infos       handle.Table[Details]
)

// DefaultHost returns the host whose status the package reports.
func DefaultHost() *Host {
	return defaultHost
}

// Details is a snapshot of the network status, release it with FreeInfo.
type Details struct {
	status Status
}

// GetDomain returns the domain of netstatus events.
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

// IsAvailable tells whether the network is reachable right now.
func IsAvailable() (bool, error) {
	return defaultHost.Status().Available, nil
}

// GetInfo takes a snapshot of the network status.
func GetInfo() (*Details, error) {
	return infos.Add(&Details{status: defaultHost.Status()}), nil
}

// FreeInfo releases what GetInfo returned, exactly once.
func FreeInfo(info *Details) error {
	return infos.Free(info)
}

// InfoGetAvailability returns whether the network was reachable when info was taken.
func InfoGetAvailability(info *Details) (bool, error) {
	if err := infos.Check(info); err != nil {
		return false, err
	}
	return info.status.Available, nil
}

// InfoGetDefaultInterface returns the interface that carried the default route
// when info was taken, empty when the network was unreachable.
func InfoGetDefaultInterface(info *Details) (string, error) {
	if err := infos.Check(info); err != nil {
		return "", err
	}
	return info.status.Interface, nil
}

func message(ev *bps.Event) (*wire.Message, error) {
	return service.Message(ev, domain.Get())
}

// EventGetAvailability returns the availability carried by an Info event.
func EventGetAvailability(ev *bps.Event) (bool, error) {
	m, err := message(ev)
	if err != nil {
		return false, err
	}
	return m.Bool(attrAvailable)
}

// EventGetInterface returns the interface carried by an Info event.
func EventGetInterface(ev *bps.Event) (string, error) {
	m, err := message(ev)
	if err != nil {
		return "", err
	}
	return m.String(attrInterface)
}
