// Package extension provides run-time registries that let the approval core
// work with user-defined collaborators, most notably category classifiers
// that map free-text task context onto a change category.
//
// The registries are normally configured through the public APIs under the
// root signoff package, therefore most applications do not need to import
// this package directly.
package extension
