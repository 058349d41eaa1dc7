// Package risk implements the pure risk-scoring function of the signoff
// core. An Assessor turns a proposed action set plus task context into six
// weighted risk factors, an overall weighted score and an ordinal risk level.
// Assessment is a total function - it never fails and has no side effects.
//
// The keyword and path heuristics are deliberately replaceable; callers that
// need smarter classification plug a custom classifier in via the extension
// registry and pass the resulting category hint to Assess.
package risk
