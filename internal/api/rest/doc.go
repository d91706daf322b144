// Package rest exposes the COFRN HTTP API.
//
// Every handler validates its path, query and body with package validate
// before touching storage; a failure is answered with 400 and the list of
// invalid fields. The router also serves /debug/metrics, /debug/health and
// /debug/about.
package rest
