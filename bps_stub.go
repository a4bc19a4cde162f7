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

//go:build !linux

package bps

import (
	"time"

	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/netpoll"
)

// IOEvent is the set of I/O conditions a file descriptor is watched for.
type IOEvent = netpoll.IOEvent

const (
	// IOInput reports that the file descriptor is readable.
	IOInput = netpoll.In
	// IOOutput reports that the file descriptor is writable.
	IOOutput = netpoll.Out
	// IOExcept reports an exceptional condition on the file descriptor.
	IOExcept = netpoll.Except
)

type (
	// IOHandler is called when a watched file descriptor is ready.
	IOHandler func(fd int, events IOEvent, data any) error
	// ExecFunc runs on the owner thread of a channel.
	ExecFunc func(data any) error
	// ChannelDestroyHandler is called when a channel is destroyed.
	ChannelDestroyHandler func(data any)
	// ShutdownHandler is called by the last Shutdown of a thread.
	ShutdownHandler func(data any)
	// SigeventHandler is called once per delivery of a sigevent.
	SigeventHandler func(se *Sigevent, data any) error
)

// Sigevent is a notification source for services without a file descriptor.
type Sigevent struct{}

// Deliver notifies the channel of se.
func (*Sigevent) Deliver() error { return errorx.ErrUnsupportedPlatform }

// Channel returns the channel se was added to.
func (*Sigevent) Channel() ChannelID { return 0 }

// Initialize sets bps up on the calling thread.
func Initialize(...Option) error { return errorx.ErrUnsupportedPlatform }

// Shutdown undoes one Initialize on the calling thread.
func Shutdown() error { return errorx.ErrUnsupportedPlatform }

// RegisterShutdownHandler registers a shutdown handler on the calling thread.
func RegisterShutdownHandler(ShutdownHandler, any) error { return errorx.ErrUnsupportedPlatform }

// ChannelCreate creates a channel owned by the calling thread.
func ChannelCreate(...Option) (ChannelID, error) { return 0, errorx.ErrUnsupportedPlatform }

// ChannelSetActive makes id the active channel of the calling thread.
func ChannelSetActive(ChannelID) (ChannelID, error) { return 0, errorx.ErrUnsupportedPlatform }

// ChannelGetActive returns the active channel of the calling thread.
func ChannelGetActive() (ChannelID, error) { return 0, errorx.ErrUnsupportedPlatform }

// ChannelDestroy destroys a channel.
func ChannelDestroy(ChannelID) error { return errorx.ErrUnsupportedPlatform }

// GetEvent retrieves the next event of the active channel.
func GetEvent(time.Duration) (*Event, error) { return nil, errorx.ErrUnsupportedPlatform }

// PushEvent queues an event on the active channel.
func PushEvent(*Event) error { return errorx.ErrUnsupportedPlatform }

// ChannelPushEvent queues an event on a channel.
func ChannelPushEvent(ChannelID, *Event) error { return errorx.ErrUnsupportedPlatform }

// ChannelExec schedules a function on the owner thread of a channel.
func ChannelExec(ChannelID, ExecFunc, any) error { return errorx.ErrUnsupportedPlatform }

// AddFD watches a file descriptor on the active channel.
func AddFD(int, IOEvent, IOHandler, any) error { return errorx.ErrUnsupportedPlatform }

// RemoveFD stops watching a file descriptor on the active channel.
func RemoveFD(int) error { return errorx.ErrUnsupportedPlatform }

// AddSigeventHandler creates a sigevent on the active channel.
func AddSigeventHandler(SigeventHandler, any) (*Sigevent, error) {
	return nil, errorx.ErrUnsupportedPlatform
}

// RemoveSigeventHandler removes a sigevent from the active channel.
func RemoveSigeventHandler(*Sigevent) error { return errorx.ErrUnsupportedPlatform }

// SetDomainData stores data for a domain on the active channel.
func SetDomainData(int, any) error { return errorx.ErrUnsupportedPlatform }

// GetDomainData returns the data stored for a domain on the active channel.
func GetDomainData(int) (any, error) { return nil, errorx.ErrUnsupportedPlatform }

// RegisterChannelDestroyHandler registers a destroy handler on the active channel.
func RegisterChannelDestroyHandler(ChannelDestroyHandler, any) error {
	return errorx.ErrUnsupportedPlatform
}
