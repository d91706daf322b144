// Package config defines the settings shared by the COFRN binaries and provides
// helpers to load, validate and save them in YAML format.
//
// Every setting can be overridden from a COFRN_* environment variable, which is
// how the Lambda functions are configured.
package config
