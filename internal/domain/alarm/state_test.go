package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC)

// TestEntry_DebounceCycle walks ALARM, OK, quiet period and a second sweep.
func TestEntry_DebounceCycle(t *testing.T) {
	t.Parallel()

	e := NewEntry("dispatch")
	require.True(t, e.ShouldNotifyAlarm())

	e.MarkAlarm(t0, "Threshold Crossed")
	require.Equal(t, StateAlarmed, e.State())

	e.MarkOK(t0.Add(time.Minute))
	require.Equal(t, StateRecoveredPendingQuiet, e.State())
	require.False(t, e.RecoveryDue(t0.Add(10*time.Minute), 15*time.Minute))
	require.True(t, e.RecoveryDue(t0.Add(20*time.Minute), 15*time.Minute))

	e.MarkRecoverySent(t0.Add(20 * time.Minute))
	require.Equal(t, StateRecoveredSent, e.State())
	require.False(t, e.RecoveryDue(t0.Add(40*time.Minute), 15*time.Minute))

	// Recovery already announced: a new alarm is announced again.
	require.True(t, e.ShouldNotifyAlarm())
}

// TestEntry_RealarmBeforeRecoverySent keeps the literal rule: no resend.
func TestEntry_RealarmBeforeRecoverySent(t *testing.T) {
	t.Parallel()

	e := NewEntry("dispatch")
	e.MarkAlarm(t0, "Threshold Crossed")
	e.MarkOK(t0.Add(time.Minute))

	require.False(t, e.ShouldNotifyAlarm())

	e.MarkAlarm(t0.Add(2*time.Minute), "Threshold Crossed again")
	require.Equal(t, StateAlarmed, e.State())

	// The pending recovery is cancelled by the newer alarm.
	require.False(t, e.RecoveryDue(t0.Add(time.Hour), 15*time.Minute))
}

// TestEntry_RecoveryNeedsReason skips recoveries of alarms never seen firing.
func TestEntry_RecoveryNeedsReason(t *testing.T) {
	t.Parallel()

	e := NewEntry("dispatch")
	e.MarkOK(t0)

	require.Equal(t, StateRecoveredPendingQuiet, e.State())
	require.False(t, e.RecoveryDue(t0.Add(time.Hour), 15*time.Minute))

	// The first ALARM is still announced.
	require.True(t, e.ShouldNotifyAlarm())
}

// TestEntry_StateUnknown covers the nil entry.
func TestEntry_StateUnknown(t *testing.T) {
	t.Parallel()

	var e *Entry
	require.Equal(t, StateUnknown, e.State())
	require.Equal(t, "unknown", e.State().String())
	require.Nil(t, e.Clone())
}

// TestCacheClone verifies entries and pointers are deep-copied.
func TestCacheClone(t *testing.T) {
	t.Parallel()

	e := NewEntry("dispatch")
	e.MarkAlarm(t0, "reason")

	c := Cache{"b": e, "a": NewEntry("default")}
	cloned := c.Clone()

	require.Equal(t, c, cloned)
	require.NotSame(t, c["b"], cloned["b"])
	require.NotSame(t, c["b"].LastAlarm, cloned["b"].LastAlarm)
	require.Equal(t, []string{"a", "b"}, cloned.Names())
}
