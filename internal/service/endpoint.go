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
	errorx "github.com/panjf2000/bps/pkg/errors"
)

// RequestEvents subscribes the active channel to hub under domain d.
// flags selects event codes by bit, zero selects every code.
func RequestEvents(d *Domain, hub *Hub, flags int) error {
	if flags < 0 {
		return errorx.ErrInvalidArgument
	}
	id, err := d.ID()
	if err != nil {
		return err
	}
	if _, err = Lookup(id); err == nil {
		return errorx.ErrAlreadyRequested
	}
	sub, err := hub.Subscribe()
	if err != nil {
		return err
	}
	if _, err = Attach(id, sub, uint32(flags)); err != nil {
		_ = sub.Close()
		return err
	}
	return nil
}

// StopEvents stops the codes in flags from reaching the active channel, zero flags
// or a filter left empty detach the channel altogether.
func StopEvents(d *Domain, flags int) error {
	if flags < 0 {
		return errorx.ErrInvalidArgument
	}
	id, err := d.ID()
	if err != nil {
		return err
	}
	a, err := Lookup(id)
	if err != nil {
		return err
	}
	if flags == 0 || !a.Mask(uint32(flags)) {
		a.detach()
	}
	return nil
}

// SubscriptionOf returns the subscription to hub the active channel holds under domain d.
func SubscriptionOf(d *Domain, hub *Hub) (*Subscription, error) {
	id, err := d.ID()
	if err != nil {
		return nil, err
	}
	a, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	sub, ok := a.Source().(*Subscription)
	if !ok || sub.hub != hub {
		return nil, errorx.ErrNotRequested
	}
	return sub, nil
}
