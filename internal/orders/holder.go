// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package orders keeps the orders this provider fulfils on behalf of its
// peers. It is the authoritative copy the peers read back. Held orders never
// leave the holder: readers get copies and Update is the only writer.
package orders

import (
	"slices"
	"strings"
	"sync"

	"github.com/platform-engineering-labs/skyfed/pkg/model"
)

type Holder struct {
	mu     sync.RWMutex
	orders map[string]model.Order
}

func NewHolder() *Holder {
	return &Holder{orders: make(map[string]model.Order)}
}

// Activate starts tracking a copy of order. Its id must be unused.
func (h *Holder) Activate(order model.Order) error {
	if order == nil {
		return model.NewInvalidParameterError("order is required")
	}
	id := order.Base().ID
	if id == "" {
		return model.NewInvalidParameterError("order has no id")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.orders[id]; ok {
		return model.NewInvalidParameterError("order %s is already active", id)
	}
	h.orders[id] = order.Clone()
	return nil
}

// Get returns a copy of the held order.
func (h *Holder) Get(id string) (model.Order, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	order, ok := h.orders[id]
	if !ok {
		return nil, model.NewInstanceNotFoundError("order %s is not active", id)
	}
	return order.Clone(), nil
}

// Update applies fn to the held order under the write lock.
func (h *Holder) Update(id string, fn func(model.Order)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	order, ok := h.orders[id]
	if !ok {
		return model.NewInstanceNotFoundError("order %s is not active", id)
	}
	fn(order)
	return nil
}

func (h *Holder) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.orders, id)
}

// List returns copies of the active orders sorted by id.
func (h *Holder) List() []model.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()

	list := make([]model.Order, 0, len(h.orders))
	for _, o := range h.orders {
		list = append(list, o.Clone())
	}
	slices.SortFunc(list, func(a, b model.Order) int {
		return strings.Compare(a.Base().ID, b.Base().ID)
	})
	return list
}

func (h *Holder) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orders)
}
