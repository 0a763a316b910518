// Package common holds interfaces shared across gitalong's internal packages,
// kept dependency-free so any package can import it without a cycle risk.
package common
