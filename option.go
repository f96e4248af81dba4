package hpay

import (
	"net/http"

	"github.com/D-DEV-JSS/HPAY/logger"
	"github.com/D-DEV-JSS/HPAY/metrics"
	"github.com/D-DEV-JSS/HPAY/oracle"
)

type Option func(*HPay)

func WithLogger(l logger.Logger) Option {
	return func(h *HPay) {
		h.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(h *HPay) {
		h.metrics = r
	}
}

// WithHTTPClient overrides the client used for upstream ticker requests.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HPay) {
		h.httpClient = c
	}
}

// WithSources replaces the configured price-source chain, preserving the
// given priority order.
func WithSources(sources ...oracle.Source) Option {
	return func(h *HPay) {
		h.sources = sources
	}
}
