package progress

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTracker_CountsWithoutWriter(t *testing.T) {
	tracker := NewTracker(nil, 10, "embedding")
	tracker.Start()

	tracker.Add(3)
	tracker.Add(4)
	assert.Equal(t, 7, tracker.Current())

	tracker.Add(10)
	assert.Equal(t, 10, tracker.Current(), "progress is capped at total")
}

func TestTracker_IgnoresUpdatesBeforeStart(t *testing.T) {
	tracker := NewTracker(nil, 10, "embedding")
	tracker.Add(5)
	tracker.Finish()

	assert.Zero(t, tracker.Current())
	assert.Zero(t, tracker.Elapsed())
}

func TestTracker_Finish(t *testing.T) {
	tracker := NewTracker(nil, 5, "embedding")
	tracker.Start()
	tracker.Add(2)
	tracker.Finish()

	assert.Equal(t, 5, tracker.Current())
}

func TestTracker_Abort(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(&buf, 10, "embedding")
	tracker.Start()
	tracker.Add(2)

	tracker.Abort()
	assert.Equal(t, 2, tracker.Current())

	tracker.Add(3)
	tracker.Finish()
	assert.Equal(t, 2, tracker.Current(), "updates after abort are ignored")
}

func TestTracker_FinishTwice(t *testing.T) {
	tracker := NewTracker(nil, 3, "embedding")
	tracker.Start()
	tracker.Finish()
	tracker.Finish()
	tracker.Abort()

	assert.Equal(t, 3, tracker.Current())
}

func TestTracker_Elapsed(t *testing.T) {
	tracker := NewTracker(nil, 1, "embedding")
	tracker.Start()
	time.Sleep(5 * time.Millisecond)

	assert.GreaterOrEqual(t, tracker.Elapsed(), 5*time.Millisecond)
}

func TestTracker_RendersToWriter(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewTracker(&buf, 4, "embedding")
	tracker.Start()
	tracker.Add(2)

	assert.Contains(t, buf.String(), "embedding")
	tracker.Finish()
	assert.Equal(t, 4, tracker.Current())
}

func TestTracker_NilIsNoop(t *testing.T) {
	var tracker *Tracker
	tracker.Start()
	tracker.Add(1)
	tracker.Finish()

	assert.Zero(t, tracker.Current())
	assert.Zero(t, tracker.Elapsed())
}
