package catalog

import "context"

// Capabilities describes what a provider can do and how its results behave.
type Capabilities struct {
	// Search is false for hint-only providers, which can list and fetch
	// tracks given an externally supplied album identifier but always
	// return empty from Search by contract.
	Search bool
	// FreeText marks general-purpose search providers whose results need
	// the stricter word-coverage gate in automatic mode.
	FreeText bool
}

// Provider is the uniform capability contract every catalog implements.
//
// Search and ListTracks are best-effort: ordinary transport or parse
// failures are logged inside the provider and surface as empty results.
// The only errors that cross this boundary are cancellation. FetchTrack
// reports success through its boolean for the same reason.
type Provider interface {
	// Source identifies the catalog this provider serves.
	Source() Source

	// Capabilities reports the provider's search behaviour.
	Capabilities() Capabilities

	// Search returns candidate albums for one query string. The auto flag
	// signals non-interactive resolution, where free-text providers apply
	// stricter matching.
	Search(ctx context.Context, query string, auto bool) ([]Album, error)

	// ListTracks returns the full track listing of an album.
	ListTracks(ctx context.Context, album Album) ([]Track, error)

	// FetchTrack transfers one track to dest. Preview mode asks for a
	// faster, lower-fidelity path when the provider supports one.
	FetchTrack(ctx context.Context, track Track, dest string, preview bool) (bool, error)
}
