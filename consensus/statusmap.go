// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package consensus

import (
	"context"
	"sync"

	"github.com/siemens/extip/types"
)

// StatusMap maps source descriptions to the current qualified state of their
// candidate addresses. A typical use case for a StatusMap is to consume the
// news channel of a resolution, updating a display as sources get queried,
// answer, fail, and get verified.
type StatusMap struct {
	m  map[string]types.QualifiedAddressValue
	mu sync.Mutex
}

// NewStatusMap returns a new and properly initialized StatusMap.
func NewStatusMap() *StatusMap {
	return &StatusMap{
		m: map[string]types.QualifiedAddressValue{},
	}
}

// Get returns the current per-source states from the map.
func (m *StatusMap) Get() []types.SourcedAddressValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	states := make([]types.SourcedAddressValue, 0, len(m.m))
	for origin, qa := range m.m {
		states = append(states, types.SourcedAddressValue{
			Origin:                origin,
			QualifiedAddressValue: qa,
		})
	}
	return states
}

// Update the map with a sourced address update. Updates only ever move a
// source's state forward in its lifecycle; stale or duplicate updates are
// dropped. An update without an address keeps a previously recorded address,
// so a verification verdict doesn't erase what the source answered.
func (m *StatusMap) Update(update types.SourcedAddress) {
	if update == nil {
		return
	}
	origin := update.Source()
	if origin == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.m[origin]
	if ok && update.Qual() <= current.Quality {
		return
	}
	qa := update.QA()
	if qa.Address == "" {
		qa.Address = current.Address
	}
	m.m[origin] = qa
}

// Track sourced address updates received from the specified news channel
// until the channel is closed or the context done. Track only returns after
// processing all updates or when the context is done.
func (m *StatusMap) Track(ctx context.Context, news <-chan types.SourcedAddress) error {
	for {
		select {
		case update, ok := <-news:
			if !ok {
				return nil
			}
			m.Update(update)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
