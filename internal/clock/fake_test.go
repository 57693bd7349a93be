package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestFake_NowAdvances(t *testing.T) {
	c := NewFake(epoch)
	assert.Equal(t, epoch, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, epoch.Add(90*time.Second), c.Now())
}

func TestFake_AfterFuncFiresInDeadlineOrder(t *testing.T) {
	c := NewFake(epoch)
	var got []string

	c.AfterFunc(400*time.Millisecond, func() { got = append(got, "clear") })
	c.AfterFunc(300*time.Millisecond, func() { got = append(got, "advance") })
	require.Equal(t, 2, c.Pending())

	c.Advance(299 * time.Millisecond)
	assert.Empty(t, got)

	c.Advance(time.Second)
	assert.Equal(t, []string{"advance", "clear"}, got)
	assert.Zero(t, c.Pending())
}

func TestFake_CallbackSeesItsDeadline(t *testing.T) {
	c := NewFake(epoch)
	var at time.Time
	c.AfterFunc(300*time.Millisecond, func() { at = c.Now() })

	c.Advance(time.Minute)
	assert.Equal(t, epoch.Add(300*time.Millisecond), at)
	assert.Equal(t, epoch.Add(time.Minute), c.Now())
}

func TestFake_StopCancels(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop(), "second stop reports already stopped")

	c.Advance(time.Hour)
	assert.False(t, fired)
}

func TestFake_StopAfterFireReturnsFalse(t *testing.T) {
	c := NewFake(epoch)
	tm := c.AfterFunc(time.Second, func() {})
	c.Advance(time.Second)
	assert.False(t, tm.Stop())
}

func TestFake_NonPositiveDelayRunsSynchronously(t *testing.T) {
	c := NewFake(epoch)
	fired := false
	tm := c.AfterFunc(0, func() { fired = true })
	assert.True(t, fired)
	assert.False(t, tm.Stop())
}

func TestFake_CallbackMaySchedule(t *testing.T) {
	c := NewFake(epoch)
	count := 0
	c.AfterFunc(time.Second, func() {
		count++
		c.AfterFunc(time.Second, func() { count++ })
	})

	c.Advance(3 * time.Second)
	assert.Equal(t, 2, count)
}

func TestReal_AfterFuncStop(t *testing.T) {
	tm := Real().AfterFunc(time.Hour, func() { t.Error("must not fire") })
	assert.True(t, tm.Stop())
}
