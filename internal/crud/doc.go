// Package crud provides the generic record service shared by every
// collection. A Service loads the whole collection from its slot, operates
// on it in memory, and saves it back, all under a lock held per collection
// name.
package crud
