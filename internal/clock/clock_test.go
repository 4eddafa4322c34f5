package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	m := NewManual(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	var fired []string
	m.AfterFunc(2*time.Second, func() { fired = append(fired, "b") })
	m.AfterFunc(time.Second, func() { fired = append(fired, "a") })

	m.Advance(1500 * time.Millisecond)
	require.Equal(t, []string{"a"}, fired)

	m.Advance(time.Second)
	require.Equal(t, []string{"a", "b"}, fired)
	require.Equal(t, 0, m.Pending())
}

func TestManualStopPreventsCallback(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	called := false
	timer := m.AfterFunc(time.Second, func() { called = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())
	m.Advance(time.Minute)
	require.False(t, called)
}

func TestManualRearmedTimerFiresWithinWindow(t *testing.T) {
	m := NewManual(time.Unix(0, 0))
	ticks := 0
	var arm func()
	arm = func() {
		m.AfterFunc(time.Minute, func() {
			ticks++
			arm()
		})
	}
	arm()

	m.Advance(3*time.Minute + time.Second)
	require.Equal(t, 3, ticks)
	require.Equal(t, 1, m.Pending())
}
