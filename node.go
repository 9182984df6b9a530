package noderank

// Node is a remote endpoint candidate being evaluated.
//
// Nodes are immutable inputs: the engine never mutates them, and Meta is
// opaque metadata carried through unchanged to the ranked output.
type Node struct {
	// ID uniquely identifies the node within a pool.
	ID string `json:"id"`

	// Address is the network target probed for health, e.g. an HTTP(S) URL.
	Address string `json:"address"`

	// Meta holds arbitrary caller-owned metadata (region, weight, tags).
	Meta map[string]any `json:"meta,omitempty"`
}
