// Package titles turns adversarial game titles into search-friendly derived
// strings: normalized cache keys, punctuation-folded and edition-stripped
// variants, significant-word sets, and the ordered query cascades each source
// category tries.
//
// Input strings are never mutated; every transformation returns a new value
// and normalization is idempotent.
package titles
