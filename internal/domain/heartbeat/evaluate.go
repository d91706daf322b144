package heartbeat

import (
	"fmt"
	"strings"
	"time"
)

// Transition is a recorder whose failure flag flipped during an evaluation.
type Transition struct {
	// Record is the updated row.
	Record *Record
	// WasFailed is the IsFailed value before the flip.
	WasFailed bool
	// Elapsed is the heartbeat age at evaluation time.
	Elapsed time.Duration
	// Message describes the new state for operators.
	Message string
}

// Evaluate flips the failure state of every record whose heartbeat crossed the
// threshold and returns the transitions in input order. Records are updated in
// place: a newly failed recorder is also marked inactive.
//
// A failed record recovers when its age is at most threshold; a healthy record
// fails when its age is at least threshold.
func Evaluate(records []*Record, now time.Time, threshold time.Duration) []Transition {
	var transitions []Transition

	for _, r := range records {
		elapsed := now.Sub(r.Seen())

		recovered := r.IsFailed && elapsed <= threshold
		stale := !r.IsFailed && elapsed >= threshold

		if !recovered && !stale {
			continue
		}

		transitions = append(transitions, Transition{
			Record:    r,
			WasFailed: r.IsFailed,
			Elapsed:   elapsed,
		})

		r.IsFailed = !r.IsFailed
		if r.IsFailed {
			r.IsActive = false
		}
	}

	// Messages depend on the state after every flip.
	state := summarize(records)
	for i := range transitions {
		transitions[i].Message = state.describe(transitions[i].Record)
	}

	return transitions
}

// JoinMessages joins transition messages into one alert body.
func JoinMessages(transitions []Transition) string {
	lines := make([]string, 0, len(transitions))
	for _, t := range transitions {
		lines = append(lines, t.Message)
	}

	return strings.Join(lines, "\n")
}

// fleet is the joint state of all recorders.
type fleet struct {
	primaries     int
	primariesUp   int
	secondaries   int
	secondariesUp int
}

func summarize(records []*Record) fleet {
	var f fleet

	for _, r := range records {
		if r.IsPrimary {
			f.primaries++

			if !r.IsFailed {
				f.primariesUp++
			}

			continue
		}

		f.secondaries++

		if !r.IsFailed {
			f.secondariesUp++
		}
	}

	return f
}

func (f fleet) describe(r *Record) string {
	var (
		primaryUp   = f.primariesUp > 0
		secondaryOn = f.secondaries > 0
		secondaryUp = f.secondariesUp > 0
		change      = "is back online"
	)

	if r.IsFailed {
		change = "is offline"
	}

	role := "Secondary"
	if r.IsPrimary {
		role = "Primary"
	}

	subject := fmt.Sprintf("%s recorder %s %s", role, r.Server, change)

	switch {
	case f.primaries == 0:
		return fmt.Sprintf("%s; recorder state unknown (primaries: %d, secondaries: %d/%d up)",
			subject, f.primaries, f.secondariesUp, f.secondaries)
	case primaryUp && secondaryUp:
		return subject + "; primary and secondary recorders are online"
	case !primaryUp && secondaryUp:
		return subject + "; primary recorder is down, switching to secondary recorder"
	case primaryUp && !secondaryOn:
		return subject + "; primary recorder is online, no secondary recorder is configured"
	case primaryUp && !secondaryUp:
		return subject + "; primary recorder is online, secondary recorder is down"
	default:
		return subject + "; all recorders are down, audio is NOT being recorded"
	}
}
