package transfer

import (
	"sync"
	"time"
)

// Progress is a point-in-time snapshot of a transfer.
type Progress struct {
	HasStarted    bool
	HasFinished   bool
	StartTime     time.Time
	FinishTime    time.Time
	ProgressPct   float64
	TotalBytes    int64
	DoneBytes     int64
	ETA           time.Time
	TimeLeft      time.Duration
	TransferSpeed float64 // bytes/sec
}

// progressTracker accumulates the state a [Progress] is derived from. It is
// written by the transfer and read concurrently by observers such as the UI.
type progressTracker struct {
	sync.RWMutex
	startTime  time.Time
	finishTime time.Time
	totalBytes int64
	doneBytes  int64
}

func (p *progressTracker) start(total int64) {
	p.Lock()
	defer p.Unlock()

	p.startTime = time.Now()
	p.finishTime = time.Time{}
	p.totalBytes = total
	p.doneBytes = 0
}

func (p *progressTracker) add(n int64) {
	p.Lock()
	defer p.Unlock()

	p.doneBytes += n
}

func (p *progressTracker) finish() {
	p.Lock()
	defer p.Unlock()

	p.finishTime = time.Now()
}

// Write implements [io.Writer] so the tracker can sit in an [io.MultiWriter].
func (p *progressTracker) Write(b []byte) (int, error) {
	p.add(int64(len(b)))

	return len(b), nil
}

func (p *progressTracker) snapshot() Progress {
	p.RLock()
	defer p.RUnlock()

	if p.startTime.IsZero() {
		return Progress{}
	}

	var progressPct float64
	if p.totalBytes > 0 {
		progressPct = float64(p.doneBytes) / float64(p.totalBytes) * 100 //nolint:mnd
		progressPct = max(float64(0), min(progressPct, float64(100)))     //nolint:mnd
	} else if !p.finishTime.IsZero() {
		progressPct = 100 //nolint:mnd
	}

	var eta time.Time
	var timeLeft time.Duration
	var transferSpeed float64

	end := time.Now()
	if !p.finishTime.IsZero() {
		end = p.finishTime
	}

	if elapsed := end.Sub(p.startTime); elapsed > 0 && p.doneBytes > 0 {
		transferSpeed = float64(p.doneBytes) / elapsed.Seconds()

		if p.finishTime.IsZero() && p.doneBytes < p.totalBytes {
			remainingSeconds := float64(p.totalBytes-p.doneBytes) / transferSpeed
			timeLeft = time.Duration(remainingSeconds * float64(time.Second))
			eta = time.Now().Add(timeLeft)
		}
	}

	return Progress{
		HasStarted:    true,
		HasFinished:   !p.finishTime.IsZero(),
		StartTime:     p.startTime,
		FinishTime:    p.finishTime,
		ProgressPct:   progressPct,
		TotalBytes:    p.totalBytes,
		DoneBytes:     p.doneBytes,
		ETA:           eta,
		TimeLeft:      timeLeft,
		TransferSpeed: transferSpeed,
	}
}
