package services

import (
	"context"
	"sync"
	"time"
)

// monitor is the ticker goroutine shared by the schedulers. Each tick is
// submitted to the loop instead of running on the ticker goroutine.
type monitor struct {
	name     string
	interval time.Duration
	stopChan chan struct{}
	once     sync.Once
}

func newMonitor(name string, interval time.Duration) *monitor {
	return &monitor{name: name, interval: interval, stopChan: make(chan struct{})}
}

func (m *monitor) start(loop *Loop, tick func(ctx context.Context)) {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if !loop.Submit(m.name, tick) {
					return
				}
			case <-m.stopChan:
				return
			}
		}
	}()
}

func (m *monitor) stop() {
	m.once.Do(func() { close(m.stopChan) })
}
