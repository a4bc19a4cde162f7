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
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/panjf2000/bps/internal/wire"
)

// State is where a purchase stands.
type State int

const (
	StateOwned State = iota
	StateSubscribed
	StateCancelled
)

// Purchase is a completed purchase.
type Purchase struct {
	ID             string
	DigitalGoodID  string
	DigitalGoodSKU string
	Metadata       string
	Date           time.Time
	State          State
}

// Store carries out the requests, it's called from the worker pool.
type Store interface {
	Purchase(req PurchaseRequestInfo) (Purchase, error)
	ExistingPurchases(allowRefresh bool) ([]Purchase, error)
	Cancel(purchaseID string) (bool, error)
}

// Failure is an error a Store returns to pick the ErrorID of the response.
type Failure struct {
	ID   ErrorID
	Text string
}

func (f *Failure) Error() string {
	return f.Text
}

// MemoryStore keeps purchases in memory. A purchase whose extra parameter
// "subscription" is "true" is a subscription and can be cancelled.
type MemoryStore struct {
	mu        sync.Mutex
	purchases []Purchase
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Purchase records the purchase.
func (s *MemoryStore) Purchase(req PurchaseRequestInfo) (Purchase, error) {
	p := Purchase{
		ID:             uuid.NewString(),
		DigitalGoodID:  req.DigitalGoodID,
		DigitalGoodSKU: req.DigitalGoodSKU,
		Metadata:       req.Metadata,
		Date:           time.Now().Truncate(time.Second),
	}
	if req.Extra["subscription"] == "true" {
		p.State = StateSubscribed
	}
	s.mu.Lock()
	s.purchases = append(s.purchases, p)
	s.mu.Unlock()
	return p, nil
}

// ExistingPurchases returns every recorded purchase.
func (s *MemoryStore) ExistingPurchases(bool) ([]Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Purchase(nil), s.purchases...), nil
}

// Cancel cancels a subscription, it reports false for a purchase that isn't one.
func (s *MemoryStore) Cancel(purchaseID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.purchases {
		if s.purchases[i].ID != purchaseID {
			continue
		}
		if s.purchases[i].State != StateSubscribed {
			return false, nil
		}
		s.purchases[i].State = StateCancelled
		return true, nil
	}
	return false, &Failure{ID: ErrorPaymentService, Text: "unknown purchase " + purchaseID}
}

func setPurchases(m *wire.Message, ps []Purchase) {
	m.SetInt(attrCount, int64(len(ps)))
	for i, p := range ps {
		m.Set(purchaseKey(i, "id"), p.ID).
			Set(purchaseKey(i, "good"), p.DigitalGoodID).
			Set(purchaseKey(i, "sku"), p.DigitalGoodSKU).
			Set(purchaseKey(i, "metadata"), p.Metadata).
			SetInt(purchaseKey(i, "date"), p.Date.Unix()).
			SetInt(purchaseKey(i, "state"), int64(p.State))
	}
}

func getPurchase(m *wire.Message, i int) (p Purchase, err error) {
	if p.ID, err = m.String(purchaseKey(i, "id")); err != nil {
		return
	}
	if p.DigitalGoodID, err = m.String(purchaseKey(i, "good")); err != nil {
		return
	}
	if p.DigitalGoodSKU, err = m.String(purchaseKey(i, "sku")); err != nil {
		return
	}
	if p.Metadata, err = m.String(purchaseKey(i, "metadata")); err != nil {
		return
	}
	date, err := m.Int(purchaseKey(i, "date"))
	if err != nil {
		return
	}
	p.Date = time.Unix(date, 0)
	state, err := m.Int(purchaseKey(i, "state"))
	if err != nil {
		return
	}
	p.State = State(state)
	return p, nil
}

func (s State) String() string {
	switch s {
	case StateOwned:
		return "owned"
	case StateSubscribed:
		return "subscribed"
	case StateCancelled:
		return "cancelled"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}
