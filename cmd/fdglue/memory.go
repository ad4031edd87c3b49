//go:build linux

package main

import (
	"context"
	"runtime"
	"sync"
	"time"
)

const (
	// memoryMonitorInterval is the interval at which a [memoryObserver] is updated.
	memoryMonitorInterval = 10 * time.Millisecond
)

// memoryObserver tracks peak heap usage over a period of time.
type memoryObserver struct {
	sync.RWMutex
	maxAlloc uint64
	stopChan chan struct{}
	doneChan chan struct{}
}

// newMemoryObserver returns a pointer to a new [memoryObserver]. The tracking
// is started and needs to be stopped with [memoryObserver.Stop].
func newMemoryObserver(ctx context.Context) *memoryObserver {
	obs := &memoryObserver{
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	go obs.monitor(ctx)

	return obs
}

// MaxAlloc returns the peak recorded heap allocation in bytes.
func (o *memoryObserver) MaxAlloc() uint64 {
	o.RLock()
	defer o.RUnlock()

	return o.maxAlloc
}

// Stop halts the tracking and returns the peak recorded heap allocation.
func (o *memoryObserver) Stop() uint64 {
	close(o.stopChan)
	<-o.doneChan

	return o.MaxAlloc()
}

func (o *memoryObserver) sample() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	o.Lock()
	if m.HeapAlloc > o.maxAlloc {
		o.maxAlloc = m.HeapAlloc
	}
	o.Unlock()
}

func (o *memoryObserver) monitor(ctx context.Context) {
	defer close(o.doneChan)

	ticker := time.NewTicker(memoryMonitorInterval)
	defer ticker.Stop()

	o.sample()

	for {
		select {
		case <-o.stopChan:
			o.sample()

			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			o.sample()
		}
	}
}
