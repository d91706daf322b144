// Package alarm contains the CloudWatch alarm de-duplication rules.
//
// An Entry remembers, per alarm name, when the alarm last fired, when it last
// returned to OK and when the recovery notice was sent. The rules on Entry
// decide whether an ALARM is announced immediately and whether a recovery has
// been quiet long enough to be announced.
package alarm
