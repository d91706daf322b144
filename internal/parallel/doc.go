// Package parallel runs bounded fan-out work.
package parallel
