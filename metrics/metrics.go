// Package metrics defines the instrumentation hooks recorded by the oracle
// and the channel ledger.
package metrics

import "time"

type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}
