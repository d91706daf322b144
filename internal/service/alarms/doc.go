// Package alarms de-duplicates CloudWatch alarm notifications.
//
// An ALARM is announced at once unless the alarm is still inside an
// unannounced recovery. An OK is only recorded; the sweep announces the
// recovery once the alarm stayed OK for the quiet period. Every invocation
// handles its event (if any) and then sweeps.
package alarms
