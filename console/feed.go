package console

import (
	"sync/atomic"
	"time"

	"github.com/panyam/sigplot/core"
)

// Feed pumps generator batches into a session at a fixed cadence.  It
// backs the demo mode of the server: a device simulator standing in
// for a real producer.
type Feed struct {
	session  *Session
	gen      *SignalGenerator
	interval time.Duration

	running  atomic.Bool
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewFeed creates a stopped feed.  interval is how often a batch is
// appended; at or below zero it defaults to 200ms.
func NewFeed(session *Session, gen *SignalGenerator, interval time.Duration) *Feed {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Feed{session: session, gen: gen, interval: interval}
}

// IsRunning reports whether the pump loop is active.
func (f *Feed) IsRunning() bool {
	return f.running.Load()
}

// Start launches the pump loop.  Starting a running feed is a no-op.
func (f *Feed) Start() {
	if !f.running.CompareAndSwap(false, true) {
		return
	}
	f.stopChan = make(chan struct{})
	f.doneChan = make(chan struct{})
	core.Info("Feed: starting at %v per batch", f.interval)
	go f.run()
}

// Stop halts the pump loop and waits for it to drain.  Stopping a
// stopped feed is a no-op.
func (f *Feed) Stop() {
	if !f.running.CompareAndSwap(true, false) {
		return
	}
	close(f.stopChan)
	<-f.doneChan
	core.Info("Feed: stopped")
}

func (f *Feed) run() {
	defer close(f.doneChan)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-f.stopChan:
			return
		case <-ticker.C:
			if err := f.session.Append(f.gen.Next()); err != nil {
				core.Error("Feed: append failed: %v", err)
			}
			if i%100 == 0 {
				core.Debug("Feed: %d batches pumped", i)
			}
		}
	}
}
