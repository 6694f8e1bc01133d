// Package types defines the entity records, the storage port, configuration,
// and the standard errors shared by every farmkeeper collection.
package types
