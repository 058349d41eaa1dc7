// Package model defines the shared data model of the signoff core: ordered
// risk and trust enumerations, action categories and the inbound types
// (ProposedAction, TaskContext) supplied by the embedding session layer.
//
// The enumerations are tagged string types with explicit comparison helpers
// rather than bare integers so that serialised snapshots stay readable and
// ordering is never an accident of numeric coercion.
package model
