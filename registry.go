package noderank

import (
	"sort"
	"sync"
)

// RegistryEntry is the last-known healthy state recorded for one node.
type RegistryEntry struct {
	Node          Node            `json:"node"`
	LastProbe     ProbeResult     `json:"lastProbe"`
	LastStability StabilityResult `json:"lastStability"`
}

// Registry is the process-lifetime store of last-known node health.
//
// It is constructed explicitly and shared by reference with the Checker and
// any query callers; a fresh run overwrites entries rather than clearing
// them, so state from a previous run persists until superseded. All methods
// are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	healthy   map[string]RegistryEntry
	order     []string // healthy node IDs in first-registration order
	unhealthy map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		healthy:   make(map[string]RegistryEntry),
		unhealthy: make(map[string]struct{}),
	}
}

// MarkHealthy records a successful classification, overwriting any previous
// entry for the node and removing it from the unhealthy side.
func (r *Registry) MarkHealthy(node Node, probe ProbeResult, stability StabilityResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.healthy[node.ID]; !exists {
		r.order = append(r.order, node.ID)
	}
	r.healthy[node.ID] = RegistryEntry{
		Node:          node,
		LastProbe:     probe,
		LastStability: stability,
	}
	delete(r.unhealthy, node.ID)
}

// MarkUnhealthy records a failed classification. Only the identifier is
// retained on the unhealthy side; any healthy entry is removed.
func (r *Registry) MarkUnhealthy(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.healthy[nodeID]; exists {
		delete(r.healthy, nodeID)
		for i, id := range r.order {
			if id == nodeID {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
	r.unhealthy[nodeID] = struct{}{}
}

// BestKnownNode returns the healthy node with the lowest last-confirmed
// latency, without re-probing. Ties keep the earlier-registered node.
// ok is false when no healthy nodes are known.
func (r *Registry) BestKnownNode() (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Node
	bestLatency := -1.0
	for _, id := range r.order {
		entry := r.healthy[id]
		if bestLatency < 0 || entry.LastProbe.LatencyMs < bestLatency {
			best = entry.Node
			bestLatency = entry.LastProbe.LatencyMs
		}
	}
	if bestLatency < 0 {
		return Node{}, false
	}
	return best, true
}

// Healthy returns the healthy entries in first-registration order.
func (r *Registry) Healthy() []RegistryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]RegistryEntry, 0, len(r.order))
	for _, id := range r.order {
		entries = append(entries, r.healthy[id])
	}
	return entries
}

// Unhealthy returns the identifiers currently on the unhealthy side, sorted.
func (r *Registry) Unhealthy() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.unhealthy))
	for id := range r.unhealthy {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IsUnhealthy reports whether the node was last classified unhealthy.
func (r *Registry) IsUnhealthy(nodeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.unhealthy[nodeID]
	return ok
}

// Len returns the number of healthy entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.healthy)
}
