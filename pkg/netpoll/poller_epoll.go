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

//go:build linux

package netpoll

import (
	"encoding/binary"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/panjf2000/bps/internal/queue"
	errorx "github.com/panjf2000/bps/pkg/errors"
	"github.com/panjf2000/bps/pkg/logging"
)

// Poller monitors file descriptors on behalf of a single owner goroutine.
type Poller struct {
	fd          int    // epoll fd
	efd         int    // eventfd
	efdBuf      []byte // buffer to read the 8-byte eventfd counter
	wakeupCall  atomic.Int32
	el          *eventList
	attachments map[int]*PollAttachment
	tasks       queue.AsyncTaskQueue
}

// OpenPoller instantiates a poller whose event list starts at eventsCap entries.
func OpenPoller(eventsCap int) (poller *Poller, err error) {
	poller = new(Poller)
	if poller.fd, err = unix.EpollCreate1(unix.EPOLL_CLOEXEC); err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	if poller.efd, err = unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC); err != nil {
		_ = unix.Close(poller.fd)
		return nil, os.NewSyscallError("eventfd", err)
	}
	if err = unix.EpollCtl(poller.fd, unix.EPOLL_CTL_ADD, poller.efd,
		&unix.EpollEvent{Fd: int32(poller.efd), Events: unix.EPOLLIN}); err != nil {
		_ = poller.Close()
		return nil, os.NewSyscallError("epoll_ctl add", err)
	}
	poller.efdBuf = make([]byte, 8)
	poller.el = newEventList(eventsCap)
	poller.attachments = make(map[int]*PollAttachment)
	poller.tasks = queue.NewLockFreeQueue()
	return
}

// Close closes the poller, the registered file descriptors are left open.
func (p *Poller) Close() error {
	_ = unix.Close(p.efd)
	return os.NewSyscallError("close", unix.Close(p.fd))
}

var wakeupValue = binary.NativeEndian.AppendUint64(nil, 1)

// Wakeup interrupts a Wait that is blocked in epoll_wait.
func (p *Poller) Wakeup() error {
	if !p.wakeupCall.CompareAndSwap(0, 1) {
		return nil
	}
	return p.notify()
}

func (p *Poller) notify() (err error) {
	for {
		_, err = unix.Write(p.efd, wakeupValue)
		if err == unix.EAGAIN {
			// The counter is saturated, the owner has a wakeup pending anyway.
			_, _ = unix.Read(p.efd, p.efdBuf)
			continue
		}
		if err == unix.EINTR {
			continue
		}
		return os.NewSyscallError("write", err)
	}
}

// Trigger enqueues a task to be run by the owner and wakes it up.
func (p *Poller) Trigger(fn queue.Func, arg any) error {
	task := queue.GetTask()
	task.Run, task.Arg = fn, arg
	p.tasks.Enqueue(task)
	return p.Wakeup()
}

// Pending reports the number of queued tasks.
func (p *Poller) Pending() int {
	return int(p.tasks.Length())
}

// Wait runs one round of dispatch, blocking for at most msec milliseconds,
// a negative msec blocks until something happens.
// The first error returned by a callback or a task aborts the round and is returned.
func (p *Poller) Wait(msec int) error {
	n, err := unix.EpollWait(p.fd, p.el.events, msec)
	if err != nil {
		if err == unix.EINTR {
			return nil
		}
		logging.Errorf("error occurs in epoll: %v", os.NewSyscallError("epoll_wait", err))
		return os.NewSyscallError("epoll_wait", err)
	}

	var doChores bool
	for i := 0; i < n; i++ {
		ev := &p.el.events[i]
		fd := int(ev.Fd)
		if fd == p.efd {
			doChores = true
			continue
		}
		// The attachment may have been deleted by an earlier callback of this round.
		pa, ok := p.attachments[fd]
		if !ok {
			continue
		}
		if ready := fromEpoll(ev.Events, pa.Events); ready != 0 {
			if err = pa.Callback(fd, ready); err != nil {
				if doChores {
					p.rearm()
				}
				return err
			}
		}
	}

	if n == p.el.size {
		p.el.expand()
	} else if n < p.el.size>>1 {
		p.el.shrink()
	}

	if doChores {
		return p.runTasks()
	}
	return nil
}

func (p *Poller) runTasks() (err error) {
	_, _ = unix.Read(p.efd, p.efdBuf)
	defer p.rearm()
	for i := 0; i < MaxAsyncTasksAtOneTime; i++ {
		task := p.tasks.Dequeue()
		if task == nil {
			break
		}
		err = task.Run(task.Arg)
		queue.PutTask(task)
		if err != nil {
			return
		}
	}
	return
}

// rearm clears the wakeup flag and notifies again if work is left over,
// so that tasks enqueued while the owner was busy are not lost.
func (p *Poller) rearm() {
	p.wakeupCall.Store(0)
	if !p.tasks.IsEmpty() && p.wakeupCall.CompareAndSwap(0, 1) {
		if err := p.notify(); err != nil {
			logging.Errorf("failed to notify next round of event-loop for leftover tasks, %v", err)
		}
	}
}

// Add registers pa.FD for the given events.
func (p *Poller) Add(pa *PollAttachment, events IOEvent) error {
	if pa.FD < 0 {
		return errorx.ErrInvalidFD
	}
	if !events.Valid() {
		return errorx.ErrInvalidIOEvents
	}
	if _, ok := p.attachments[pa.FD]; ok {
		return errorx.ErrFDAlreadyRegistered
	}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, pa.FD,
		&unix.EpollEvent{Fd: int32(pa.FD), Events: toEpoll(events)}); err != nil {
		return os.NewSyscallError("epoll_ctl add", err)
	}
	pa.Events = events
	p.attachments[pa.FD] = pa
	return nil
}

// Modify changes the events a registered file descriptor is watched for.
func (p *Poller) Modify(fd int, events IOEvent) error {
	if !events.Valid() {
		return errorx.ErrInvalidIOEvents
	}
	pa, ok := p.attachments[fd]
	if !ok {
		return errorx.ErrFDNotRegistered
	}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd,
		&unix.EpollEvent{Fd: int32(fd), Events: toEpoll(events)}); err != nil {
		return os.NewSyscallError("epoll_ctl mod", err)
	}
	pa.Events = events
	return nil
}

// Delete removes the given file descriptor from the poller.
func (p *Poller) Delete(fd int) error {
	if _, ok := p.attachments[fd]; !ok {
		return errorx.ErrFDNotRegistered
	}
	delete(p.attachments, fd)
	err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil)
	if err == unix.EBADF || err == unix.ENOENT {
		// The descriptor was closed before being removed.
		err = nil
	}
	return os.NewSyscallError("epoll_ctl del", err)
}

// Attachment returns the attachment registered for fd.
func (p *Poller) Attachment(fd int) (*PollAttachment, bool) {
	pa, ok := p.attachments[fd]
	return pa, ok
}

// Attachments returns the registered file descriptors.
func (p *Poller) Attachments() []int {
	fds := make([]int, 0, len(p.attachments))
	for fd := range p.attachments {
		fds = append(fds, fd)
	}
	return fds
}
