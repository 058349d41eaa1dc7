// Package trust implements the rank-gated approval policy: whether a risk
// level demands human sign-off for a given trust rank, whether a request may
// be resolved without a human at all, and how ranks advance with successful
// task counts. All functions are total - they never fail, whatever the input.
package trust
