// Package api runs the cofrn-api process: the HTTP API, the gRPC health
// service and the in-process heartbeat and alarm sweep tickers.
package api
