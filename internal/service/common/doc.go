// Package common holds helpers shared by several services.
//
// It builds stores, the alert dispatcher and the tag resolver from
// configuration, provides a gRPC health probe client with timeouts, and
// detects the current system actor (hostname/username) for logs and the
// about endpoint.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
