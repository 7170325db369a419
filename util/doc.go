// Package util holds small helpers shared across the service: parsing
// human-readable sizes from configuration and masking secrets for log
// output.
package util
