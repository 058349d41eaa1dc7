// Package progress defines primitives for reporting and aggregating approval
// request counters for a single session. It abstracts away the delivery
// mechanism so that embedding applications can surface live counts (pending,
// auto-resolved, rejected, ...) regardless of how updates are consumed.
package progress
