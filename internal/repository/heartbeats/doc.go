// Package heartbeats stores recorder heartbeat rows.
//
// DynamoRepository talks to the production DynamoDB table; FileRepository keeps
// the same rows in a JSON file for local runs and tests.
package heartbeats
