package heartbeat

import "time"

// Record is one recording server's heartbeat row.
type Record struct {
	// Server is the unique recorder name (table key).
	Server string `dynamodbav:"Server" json:"Server"`
	// LastHeartbeat is the epoch millisecond timestamp of the latest heartbeat.
	LastHeartbeat int64 `dynamodbav:"LastHeartbeat" json:"LastHeartbeat"`
	// IsPrimary marks the preferred recorder.
	IsPrimary bool `dynamodbav:"IsPrimary" json:"IsPrimary"`
	// IsFailed is set by the monitor when the heartbeat goes stale.
	IsFailed bool `dynamodbav:"IsFailed" json:"IsFailed"`
	// IsActive marks the recorder currently feeding audio.
	IsActive bool `dynamodbav:"IsActive" json:"IsActive"`
}

// Seen returns LastHeartbeat as a time.
func (r *Record) Seen() time.Time {
	return time.UnixMilli(r.LastHeartbeat)
}

// Clone returns a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	cloned := *r

	return &cloned
}
