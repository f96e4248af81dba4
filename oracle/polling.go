package oracle

import (
	"context"
	"time"

	"github.com/D-DEV-JSS/HPAY/types"
)

// StartPolling begins a background refresh loop that calls onUpdate with
// every successfully fetched quote. The first refresh happens immediately,
// subsequent ones every interval. Calling StartPolling again cancels the
// previous loop first. Refresh failures are logged and do not stop the loop.
func (o *Oracle) StartPolling(interval time.Duration, onUpdate func(*types.PriceQuote)) {
	if interval <= 0 {
		interval = types.DefaultPollInterval
	}

	o.StopPolling()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	o.pollMu.Lock()
	o.pollCancel = cancel
	o.pollDone = done
	o.pollMu.Unlock()

	go o.pollLoop(ctx, interval, onUpdate, done)
}

// StopPolling cancels the polling loop and waits for it to exit. Safe to
// call when not polling, and safe to call more than once.
func (o *Oracle) StopPolling() {
	o.pollMu.Lock()
	cancel, done := o.pollCancel, o.pollDone
	o.pollCancel, o.pollDone = nil, nil
	o.pollMu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (o *Oracle) pollLoop(ctx context.Context, interval time.Duration, onUpdate func(*types.PriceQuote), done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	o.pollOnce(ctx, onUpdate)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.pollOnce(ctx, onUpdate)
		}
	}
}

func (o *Oracle) pollOnce(ctx context.Context, onUpdate func(*types.PriceQuote)) {
	quote, err := o.GetRate(ctx)
	if err != nil {
		o.log.Error("price poll failed", map[string]any{"error": err.Error()})
		o.rec.IncCounter("price_poll_failure", nil)
		return
	}

	if onUpdate != nil {
		onUpdate(quote)
	}
}
