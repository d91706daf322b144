// Package health publishes recorder availability over the standard gRPC
// health checking protocol.
//
// Every recorder is exposed as a service named after its server. The overall
// service ("") is SERVING while at least one recorder is up.
package health
