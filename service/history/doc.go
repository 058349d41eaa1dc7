// Package history versions approval decisions the way git versions files: an
// append-only commit DAG with named branches, tags and merge requests on top.
// The store is the single owner of all history mutation; every operation
// either completes its invariant-preserving steps or performs none, so a
// failed call never leaves a half-applied state behind.
package history
