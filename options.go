package noderank

import (
	"net/http"

	"github.com/benbjohnson/clock"
)

// Option configures a Checker beyond its Config.
type Option func(*Checker)

// WithProber replaces the default HTTP prober. Useful for non-HTTP node
// pools and for tests.
func WithProber(p Prober) Option {
	return func(c *Checker) {
		c.prober = p
	}
}

// WithHTTPClient sets the HTTP client used by the default prober. Ignored
// when WithProber is also given.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = client
	}
}

// WithClock injects the clock used for inter-attempt delays and timestamps.
func WithClock(clk clock.Clock) Option {
	return func(c *Checker) {
		c.clock = clk
	}
}

// WithMetrics attaches a Prometheus metrics collector to the checker.
func WithMetrics(m *Metrics) Option {
	return func(c *Checker) {
		c.metrics = m
	}
}

// WithPublisher attaches a NATS publisher; per-node outcomes and run
// summaries are published as they happen.
func WithPublisher(p *Publisher) Option {
	return func(c *Checker) {
		c.publisher = p
	}
}
