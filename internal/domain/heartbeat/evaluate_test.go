package heartbeat

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

func record(server string, primary, failed bool, age time.Duration) *Record {
	return &Record{
		Server:        server,
		LastHeartbeat: now.Add(-age).UnixMilli(),
		IsPrimary:     primary,
		IsFailed:      failed,
		IsActive:      !failed,
	}
}

// TestEvaluate_PrimaryFailsOver flips a stale primary and switches to the secondary.
func TestEvaluate_PrimaryFailsOver(t *testing.T) {
	t.Parallel()

	primary := record("saguache-1", true, false, 10*time.Minute)
	secondary := record("saguache-2", false, false, 0)

	transitions := Evaluate([]*Record{primary, secondary}, now, 5*time.Minute)

	require.Len(t, transitions, 1)
	require.Same(t, primary, transitions[0].Record)
	require.False(t, transitions[0].WasFailed)
	require.True(t, primary.IsFailed)
	require.False(t, primary.IsActive)
	require.False(t, secondary.IsFailed)
	require.Contains(t, strings.ToLower(transitions[0].Message), "switching to secondary")
}

// TestEvaluate_Boundaries checks the inclusive threshold on both directions.
func TestEvaluate_Boundaries(t *testing.T) {
	t.Parallel()

	threshold := 5 * time.Minute

	// Healthy at exactly the threshold fails.
	r := record("a", true, false, threshold)
	require.Len(t, Evaluate([]*Record{r}, now, threshold), 1)
	require.True(t, r.IsFailed)

	// Failed at exactly the threshold recovers.
	r = record("a", true, true, threshold)
	require.Len(t, Evaluate([]*Record{r}, now, threshold), 1)
	require.False(t, r.IsFailed)

	// Healthy just under, failed just over: no change.
	healthy := record("a", true, false, threshold-time.Second)
	failed := record("b", false, true, threshold+time.Second)
	require.Empty(t, Evaluate([]*Record{healthy, failed}, now, threshold))
}

// TestEvaluate_RecoveryKeepsActiveFlag ensures recovery does not touch IsActive.
func TestEvaluate_RecoveryKeepsActiveFlag(t *testing.T) {
	t.Parallel()

	r := record("a", true, true, time.Minute)
	r.IsActive = false

	transitions := Evaluate([]*Record{r}, now, 5*time.Minute)
	require.Len(t, transitions, 1)
	require.True(t, transitions[0].WasFailed)
	require.False(t, r.IsFailed)
	require.False(t, r.IsActive)
}

// TestEvaluate_Messages covers every phrasing branch.
func TestEvaluate_Messages(t *testing.T) {
	t.Parallel()

	threshold := 5 * time.Minute

	cases := []struct {
		name    string
		records []*Record
		want    string
	}{
		{
			name:    "both online",
			records: []*Record{record("p", true, true, 0), record("s", false, false, 0)},
			want:    "primary and secondary recorders are online",
		},
		{
			name:    "primary down secondary up",
			records: []*Record{record("p", true, false, time.Hour), record("s", false, false, 0)},
			want:    "switching to secondary recorder",
		},
		{
			name:    "primary up without secondary",
			records: []*Record{record("p", true, true, 0)},
			want:    "no secondary recorder is configured",
		},
		{
			name:    "primary up secondary down",
			records: []*Record{record("p", true, false, 0), record("s", false, false, time.Hour)},
			want:    "secondary recorder is down",
		},
		{
			name:    "both down",
			records: []*Record{record("p", true, false, time.Hour), record("s", false, true, time.Hour)},
			want:    "all recorders are down",
		},
		{
			name:    "no primary configured",
			records: []*Record{record("s", false, false, time.Hour)},
			want:    "recorder state unknown",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			transitions := Evaluate(tc.records, now, threshold)
			require.Len(t, transitions, 1)
			require.Contains(t, transitions[0].Message, tc.want)
		})
	}
}

// TestJoinMessages joins one line per transition.
func TestJoinMessages(t *testing.T) {
	t.Parallel()

	primary := record("p", true, false, time.Hour)
	secondary := record("s", false, false, time.Hour)

	transitions := Evaluate([]*Record{primary, secondary}, now, 5*time.Minute)
	require.Len(t, transitions, 2)

	joined := JoinMessages(transitions)
	require.Len(t, strings.Split(joined, "\n"), 2)
	require.Contains(t, joined, "Primary recorder p is offline")
	require.Contains(t, joined, "Secondary recorder s is offline")
}
