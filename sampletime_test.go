package abcalc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSampleTime(t *testing.T) {
	t1 := SampleTime()
	t1a := time.Now()
	time.Sleep(300 * time.Millisecond)
	t2 := SampleTime()
	t2a := time.Now()

	diff := DiffTimeStamps(t1, t2)
	diffa := t2a.Sub(t1a)
	aboutEqual := FloatsEqualWithTolerance(float64(diff), float64(diffa), 1) // both in nanoseconds, within 1%
	assert.True(t, aboutEqual, "values diverge too much: %v vs. %v", time.Duration(diff), diffa)
}

func TestDiffTimeStampsNegative(t *testing.T) {
	t1 := SampleTime()
	time.Sleep(time.Millisecond)
	t2 := SampleTime()
	assert.Greater(t, DiffTimeStamps(t1, t2), int64(0))
	assert.Less(t, DiffTimeStamps(t2, t1), int64(0))
}

func TestElapsedSince(t *testing.T) {
	start := SampleTime()
	time.Sleep(20 * time.Millisecond)
	d := elapsedSince(start)
	assert.GreaterOrEqual(t, d, 20*time.Millisecond)
	assert.Less(t, d, 5*time.Second)
}
