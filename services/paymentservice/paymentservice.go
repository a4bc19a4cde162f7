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

// Package paymentservice lets an application buy digital goods, list what it
// bought and cancel subscriptions. Every request returns at once with a request id,
// the answer arrives later as an event carrying the same id.
package paymentservice

import (
	"strconv"
	"sync/atomic"

	"github.com/panjf2000/bps"
	"github.com/panjf2000/bps/internal/handle"
	"github.com/panjf2000/bps/internal/service"
	"github.com/panjf2000/bps/internal/wire"
	errorx "github.com/panjf2000/bps/pkg/errors"
)

// Event codes.
const (
	PurchaseResponse             uint16 = 0x01
	GetExistingPurchasesResponse uint16 = 0x02
	CancelSubscriptionResponse   uint16 = 0x03
)

// Response tells whether a request succeeded.
type Response int

const (
	ResponseSuccess Response = iota
	ResponseFailure
)

// ErrorID classifies a failed request.
type ErrorID int

const (
	ErrorNone ErrorID = iota
	ErrorUserCancelled
	ErrorSystemBusy
	ErrorPaymentService
	ErrorNetwork
)

const (
	attrRequestID = "req"
	attrResponse  = "response"
	attrErrorID   = "error"
	attrErrorText = "error_text"
	attrCount     = "count"
	attrCancelled = "cancelled"
)

var (
	domain      service.Domain
	defaultHost = NewHost()
	arguments   handle.Table[PurchaseArguments]
	lastRequest atomic.Uint32
)

// DefaultHost returns the payment service every application talks to.
func DefaultHost() *Host {
	return defaultHost
}

// GetDomain returns the domain of payment events.
func GetDomain() int {
	return domain.Get()
}

// RequestEvents starts delivering payment responses to the active channel,
// requests can't be made before that.
func RequestEvents(flags int) error {
	return service.RequestEvents(&domain, defaultHost.hub, flags)
}

// StopEvents stops delivering payment responses to the active channel.
func StopEvents(flags int) error {
	return service.StopEvents(&domain, flags)
}

// PurchaseArguments describes a purchase, create it with PurchaseArgumentsCreate
// and release it with PurchaseArgumentsDestroy.
type PurchaseArguments struct {
	req PurchaseRequestInfo
}

// PurchaseRequestInfo is what a Store sees of a purchase.
type PurchaseRequestInfo struct {
	DigitalGoodID   string
	DigitalGoodSKU  string
	DigitalGoodName string
	Metadata        string
	AppName         string
	AppIcon         string
	GroupID         string
	Extra           map[string]string
}

// PurchaseArgumentsCreate returns empty purchase arguments.
func PurchaseArgumentsCreate() (*PurchaseArguments, error) {
	return arguments.Add(&PurchaseArguments{}), nil
}

// PurchaseArgumentsDestroy releases args, exactly once.
func PurchaseArgumentsDestroy(args *PurchaseArguments) error {
	return arguments.Free(args)
}

func (a *PurchaseArguments) set(dst *string, v string) error {
	if err := arguments.Check(a); err != nil {
		return err
	}
	*dst = v
	return nil
}

// SetDigitalGoodID sets the id of the good, either it or the SKU is required.
func (a *PurchaseArguments) SetDigitalGoodID(id string) error {
	return a.set(&a.req.DigitalGoodID, id)
}

// SetDigitalGoodSKU sets the SKU of the good.
func (a *PurchaseArguments) SetDigitalGoodSKU(sku string) error {
	return a.set(&a.req.DigitalGoodSKU, sku)
}

// SetDigitalGoodName sets the name shown to the user.
func (a *PurchaseArguments) SetDigitalGoodName(name string) error {
	return a.set(&a.req.DigitalGoodName, name)
}

// SetMetadata sets data echoed back in the purchase.
func (a *PurchaseArguments) SetMetadata(md string) error {
	return a.set(&a.req.Metadata, md)
}

// SetAppName sets the name of the purchasing application.
func (a *PurchaseArguments) SetAppName(name string) error {
	return a.set(&a.req.AppName, name)
}

// SetAppIcon sets the icon of the purchasing application.
func (a *PurchaseArguments) SetAppIcon(icon string) error {
	return a.set(&a.req.AppIcon, icon)
}

// SetGroupID sets the window group the purchase dialog is parented to.
func (a *PurchaseArguments) SetGroupID(id string) error {
	return a.set(&a.req.GroupID, id)
}

// SetExtraParameter adds a free-form key/value pair to the purchase.
func (a *PurchaseArguments) SetExtraParameter(key, value string) error {
	if err := arguments.Check(a); err != nil {
		return err
	}
	if a.req.Extra == nil {
		a.req.Extra = make(map[string]string)
	}
	a.req.Extra[key] = value
	return nil
}

func nextRequestID() uint32 {
	for {
		if id := lastRequest.Add(1); id != 0 {
			return id
		}
	}
}

// PurchaseRequest starts a purchase and returns its request id,
// a PurchaseResponse event with the same id follows.
func PurchaseRequest(args *PurchaseArguments) (uint32, error) {
	if err := arguments.Check(args); err != nil {
		return 0, err
	}
	if len(args.req.DigitalGoodID) == 0 && len(args.req.DigitalGoodSKU) == 0 {
		return 0, errorx.ErrInvalidArgument
	}
	req := args.req
	if req.Extra != nil {
		extra := make(map[string]string, len(req.Extra))
		for k, v := range req.Extra {
			extra[k] = v
		}
		req.Extra = extra
	}
	return defaultHost.serve(&domain, PurchaseResponse, func(s Store, m *wire.Message) error {
		p, err := s.Purchase(req)
		if err != nil {
			return err
		}
		setPurchases(m, []Purchase{p})
		return nil
	})
}

// GetExistingPurchasesRequest lists what the user bought,
// a GetExistingPurchasesResponse event follows.
func GetExistingPurchasesRequest(allowRefresh bool) (uint32, error) {
	return defaultHost.serve(&domain, GetExistingPurchasesResponse, func(s Store, m *wire.Message) error {
		ps, err := s.ExistingPurchases(allowRefresh)
		if err != nil {
			return err
		}
		setPurchases(m, ps)
		return nil
	})
}

// CancelSubscriptionRequest cancels the subscription bought by purchaseID,
// a CancelSubscriptionResponse event follows.
func CancelSubscriptionRequest(purchaseID string) (uint32, error) {
	if len(purchaseID) == 0 {
		return 0, errorx.ErrInvalidArgument
	}
	return defaultHost.serve(&domain, CancelSubscriptionResponse, func(s Store, m *wire.Message) error {
		ok, err := s.Cancel(purchaseID)
		if err != nil {
			return err
		}
		m.SetBool(attrCancelled, ok)
		return nil
	})
}

func message(ev *bps.Event) (*wire.Message, error) {
	return service.Message(ev, domain.Get())
}

// EventGetRequestID returns the id of the request a response answers.
func EventGetRequestID(ev *bps.Event) (uint32, error) {
	m, err := message(ev)
	if err != nil {
		return 0, err
	}
	return m.Uint32(attrRequestID)
}

// EventGetResponseCode tells whether the request succeeded.
func EventGetResponseCode(ev *bps.Event) (Response, error) {
	m, err := message(ev)
	if err != nil {
		return ResponseFailure, err
	}
	n, err := m.Int(attrResponse)
	return Response(n), err
}

// EventGetErrorID returns why the request failed.
func EventGetErrorID(ev *bps.Event) (ErrorID, error) {
	m, err := message(ev)
	if err != nil {
		return ErrorNone, err
	}
	if _, ok := m.Lookup(attrErrorID); !ok {
		return ErrorNone, nil
	}
	n, err := m.Int(attrErrorID)
	return ErrorID(n), err
}

// EventGetErrorText returns the description of a failure.
func EventGetErrorText(ev *bps.Event) (string, error) {
	m, err := message(ev)
	if err != nil {
		return "", err
	}
	return m.String(attrErrorText)
}

// EventGetNumberPurchases returns how many purchases a response carries.
func EventGetNumberPurchases(ev *bps.Event) (int, error) {
	m, err := message(ev)
	if err != nil {
		return 0, err
	}
	n, err := m.Int(attrCount)
	return int(n), err
}

// EventGetPurchase returns the purchase at index.
func EventGetPurchase(ev *bps.Event, index int) (Purchase, error) {
	m, err := message(ev)
	if err != nil {
		return Purchase{}, err
	}
	n, err := m.Int(attrCount)
	if err != nil {
		return Purchase{}, err
	}
	if index < 0 || int64(index) >= n {
		return Purchase{}, errorx.ErrInvalidArgument
	}
	return getPurchase(m, index)
}

// EventGetCancellationRequestSuccess tells whether the subscription was cancelled.
func EventGetCancellationRequestSuccess(ev *bps.Event) (bool, error) {
	m, err := message(ev)
	if err != nil {
		return false, err
	}
	return m.Bool(attrCancelled)
}

func purchaseKey(i int, field string) string {
	return "p" + strconv.Itoa(i) + "." + field
}
