package alarm

import (
	"maps"
	"slices"
	"time"
)

// Transition is the CloudWatch state carried by an alarm event.
type Transition string

// Alarm states reported by CloudWatch that the de-duplicator acts on.
const (
	TransitionAlarm Transition = "ALARM"
	TransitionOK    Transition = "OK"
)

// State is the de-duplication state of one alarm.
type State int

// De-duplication states.
const (
	// StateUnknown means there is no cache entry.
	StateUnknown State = iota
	// StateAlarmed means the alarm fired and has no recovery after it.
	StateAlarmed
	// StateRecoveredPendingQuiet means OK was seen but the notice is not sent yet.
	StateRecoveredPendingQuiet
	// StateRecoveredSent means the recovery notice went out.
	StateRecoveredSent
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAlarmed:
		return "alarmed"
	case StateRecoveredPendingQuiet:
		return "recovered-pending-quiet"
	case StateRecoveredSent:
		return "recovered-sent"
	default:
		return "unknown"
	}
}

// Entry is the cached notification history of one alarm. Timestamps are epoch
// milliseconds; every field but Type is optional in stored documents.
type Entry struct {
	// Type is the alert category the alarm belongs to.
	Type string `json:"type"`
	// LastAlarm is when the alarm last entered ALARM.
	LastAlarm *int64 `json:"lastAlarm,omitempty"`
	// LastOk is when the alarm last returned to OK.
	LastOk *int64 `json:"lastOk,omitempty"`
	// LastOkSent is when the recovery notice for LastOk was sent.
	LastOkSent *int64 `json:"lastOkSent,omitempty"`
	// LastReason is the state reason of the latest ALARM.
	LastReason *string `json:"lastReason,omitempty"`
}

// Cache maps alarm names to entries.
type Cache map[string]*Entry

// Document is the persisted cache together with its concurrency token.
type Document struct {
	// Cache holds the entries.
	Cache Cache
	// Version is an opaque token of the stored copy; empty for a new document.
	Version string
}

// NewEntry creates an entry for an alarm seen for the first time.
func NewEntry(category string) *Entry {
	return &Entry{Type: category}
}

// State reports the de-duplication state of the entry.
func (e *Entry) State() State {
	switch {
	case e == nil:
		return StateUnknown
	case !e.okAfterAlarm():
		return StateAlarmed
	case e.recoverySent():
		return StateRecoveredSent
	default:
		return StateRecoveredPendingQuiet
	}
}

// ShouldNotifyAlarm reports whether a new ALARM must be announced: either no OK
// followed the last alarm, or that OK was already announced. An alarm that never
// fired before is always announced, even if an OK was recorded for it.
func (e *Entry) ShouldNotifyAlarm() bool {
	return e.LastAlarm == nil || !e.okAfterAlarm() || e.recoverySent()
}

// MarkAlarm records an ALARM at now with its reason.
func (e *Entry) MarkAlarm(now time.Time, reason string) {
	e.LastAlarm = millis(now)
	e.LastReason = &reason
}

// MarkOK records an OK at now. It never notifies on its own.
func (e *Entry) MarkOK(now time.Time) {
	e.LastOk = millis(now)
}

// RecoveryDue reports whether the recovery notice should be sent at now: the
// OK came after the last alarm, stayed quiet for minOkay, a reason exists and
// no notice covers it yet.
func (e *Entry) RecoveryDue(now time.Time, minOkay time.Duration) bool {
	if e.LastOk == nil || e.LastReason == nil {
		return false
	}

	if !e.okAfterAlarm() || e.recoverySent() {
		return false
	}

	return now.Sub(time.UnixMilli(*e.LastOk)) >= minOkay
}

// MarkRecoverySent records that the recovery notice went out at now.
func (e *Entry) MarkRecoverySent(now time.Time) {
	e.LastOkSent = millis(now)
}

// Clone returns a deep copy of the entry.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}

	return &Entry{
		Type:       e.Type,
		LastAlarm:  clonePtr(e.LastAlarm),
		LastOk:     clonePtr(e.LastOk),
		LastOkSent: clonePtr(e.LastOkSent),
		LastReason: clonePtr(e.LastReason),
	}
}

// Clone returns a deep copy of the cache.
func (c Cache) Clone() Cache {
	cloned := make(Cache, len(c))
	for name, entry := range c {
		cloned[name] = entry.Clone()
	}

	return cloned
}

// Names returns the alarm names in sorted order.
func (c Cache) Names() []string {
	return slices.Sorted(maps.Keys(c))
}

// okAfterAlarm reports whether an OK was recorded after the last alarm, or an
// OK exists and no alarm ever fired.
func (e *Entry) okAfterAlarm() bool {
	if e.LastOk == nil {
		return false
	}

	return e.LastAlarm == nil || *e.LastOk > *e.LastAlarm
}

// recoverySent reports whether the latest OK was already announced.
func (e *Entry) recoverySent() bool {
	return e.LastOk != nil && e.LastOkSent != nil && *e.LastOkSent > *e.LastOk
}

func millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}
