// Package commit mints the immutable, content-hashed history nodes of the
// approval DAG. A commit id is a pure function of the commit's canonical
// content - identical decisions produce identical ids - and the tree hash
// covers the reduced approval-state projection (trust rank, auto-approval
// categories, decided request ids), not the proposed file content itself.
package commit
