// Package resolver orchestrates title resolution across catalog sources.
//
// A resolution request walks the configured sources in priority order. For
// each source it consults the result cache, then runs that source's query
// cascade, pre-filters the raw candidates, scores and ranks the survivors,
// and accepts the set only when the best candidate clears the configured
// threshold. The first source producing an accepted set wins; providers
// further down the chain are never contacted.
//
// Provider failures stay inside the engine: a failed search attempt logs a
// warning and reads as an empty result, so one flaky catalog cannot abort a
// resolution that another source could still satisfy. Cancellation is the
// single exception and always propagates.
package resolver
