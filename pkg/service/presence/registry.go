package presence

import (
	"sort"
	"sync"

	"github.com/secmon-lab/caseline/pkg/domain/types"
)

// Registry tracks which clients are currently watching which case. It
// is observational bookkeeping only: delivery correctness depends on
// the notification bus, not on registry membership.
type Registry struct {
	mu       sync.RWMutex
	watchers map[types.CaseID]map[types.ClientID]struct{}
}

func New() *Registry {
	return &Registry{
		watchers: make(map[types.CaseID]map[types.ClientID]struct{}),
	}
}

// Register adds the client to the case's watcher set. Registering the
// same client twice is idempotent.
func (r *Registry) Register(caseID types.CaseID, clientID types.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.watchers[caseID]; !exists {
		r.watchers[caseID] = make(map[types.ClientID]struct{})
	}
	r.watchers[caseID][clientID] = struct{}{}
}

// Unregister removes the client from the case's watcher set. Removing
// an absent client is a no-op.
func (r *Registry) Unregister(caseID types.CaseID, clientID types.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	clients, exists := r.watchers[caseID]
	if !exists {
		return
	}
	delete(clients, clientID)
	if len(clients) == 0 {
		delete(r.watchers, caseID)
	}
}

// Subscribers returns a point-in-time snapshot of the case's watchers,
// sorted for determinism. Callers must tolerate staleness: a client may
// disconnect right after the snapshot is taken.
func (r *Registry) Subscribers(caseID types.CaseID) []types.ClientID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]types.ClientID, 0, len(r.watchers[caseID]))
	for clientID := range r.watchers[caseID] {
		clients = append(clients, clientID)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i] < clients[j]
	})

	return clients
}

// Count returns the number of clients currently watching the case
func (r *Registry) Count(caseID types.CaseID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.watchers[caseID])
}
