package noderank

import "errors"

// Engine errors. Probe and stability failures are never surfaced as Go
// errors; they degrade a single node's classification and the run continues.
var (
	// ErrPublisherClosed indicates the publisher's NATS connection is gone.
	ErrPublisherClosed = errors.New("publisher connection closed")
)
