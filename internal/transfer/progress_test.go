package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_NotStarted(t *testing.T) {
	t.Parallel()

	p := &progressTracker{}

	assert.Equal(t, Progress{}, p.snapshot())
}

func TestProgress_InFlight(t *testing.T) {
	t.Parallel()

	p := &progressTracker{}
	p.start(1000)
	p.startTime = time.Now().Add(-2 * time.Second)

	n, err := p.Write(make([]byte, 250))
	assert.NoError(t, err)
	assert.Equal(t, 250, n)

	prog := p.snapshot()

	assert.True(t, prog.HasStarted)
	assert.False(t, prog.HasFinished)
	assert.InDelta(t, 25, prog.ProgressPct, 0.001)
	assert.Equal(t, int64(250), prog.DoneBytes)
	assert.Positive(t, prog.TransferSpeed)
	assert.Positive(t, prog.TimeLeft)
	assert.True(t, prog.ETA.After(time.Now()))
}

func TestProgress_Finished(t *testing.T) {
	t.Parallel()

	p := &progressTracker{}
	p.start(0)
	p.finish()

	prog := p.snapshot()

	assert.True(t, prog.HasFinished)
	assert.InDelta(t, 100, prog.ProgressPct, 0.001)
	assert.True(t, prog.ETA.IsZero())
	assert.Zero(t, prog.TimeLeft)
}
