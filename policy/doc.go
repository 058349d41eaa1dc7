// Package policy provides optional declarative overrides applied on top of a
// running approval coordinator - for example to bypass scoring entirely in
// development or to hard-deny selected action kinds.
package policy
