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

package netstatus

import (
	"net"
	"sync"

	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	"github.com/panjf2000/bps/pkg/logging"
)

// Status is what the network looks like.
type Status struct {
	Available bool
	Interface string
}

// Host keeps the network status and publishes every change of it.
type Host struct {
	hub *service.Hub

	mu     sync.Mutex
	status Status
}

// NewHost returns a host seeded with the status of the local interfaces.
func NewHost() *Host {
	return &Host{hub: service.NewHub("netstatus"), status: Probe()}
}

// Status returns the current status.
func (h *Host) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// SetStatus replaces the status and publishes an Info event if it changed.
func (h *Host) SetStatus(s Status) error {
	h.mu.Lock()
	changed := h.status != s
	h.status = s
	h.mu.Unlock()
	if !changed {
		return nil
	}
	logging.Debugf("netstatus: available=%t interface=%q", s.Available, s.Interface)
	return h.hub.Publish(wire.NewMessage(Info).SetBool(attrAvailable, s.Available).Set(attrInterface, s.Interface))
}

// Close hangs up on every channel.
func (h *Host) Close() {
	h.hub.Close()
}

// Probe derives the status from the local interfaces: the network is available
// when an interface other than loopback is up and has a routable address.
func Probe() Status {
	ifis, err := net.Interfaces()
	if err != nil {
		logging.Warnf("netstatus: failed to list interfaces: %v", err)
		return Status{}
	}
	for _, ifi := range ifis {
		if ifi.Flags&net.FlagUp == 0 || ifi.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifi.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipn, ok := addr.(*net.IPNet)
			if ok && ipn.IP.IsGlobalUnicast() {
				return Status{Available: true, Interface: ifi.Name}
			}
		}
	}
	return Status{}
}
