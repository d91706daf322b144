// Package heartbeat contains the recorder failover rules.
//
// Recording servers write a heartbeat row periodically. Evaluate compares each
// row's age against a staleness threshold, flips failure flags, and phrases
// one message per transition from the joint state of primary and secondary
// recorders.
package heartbeat
