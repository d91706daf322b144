// Package monitor runs the recorder failover check.
//
// One run lists every heartbeat row, flips the failure state of recorders
// whose heartbeat crossed the threshold, persists the flipped rows and sends
// one combined alert. The command in this package runs the check once, on an
// interval, or as a Lambda handler.
package monitor
