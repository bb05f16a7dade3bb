// Package provider implements the file operation provider capability
// (spec.md §4.5, §9): a small, statically-dispatched capability set with
// two implementations (integrated filesystem, and a null provider that
// signals the external-file-operations protocol).
//
// Grounded on fleetd's internal/compression.Compressor pattern: an
// interface plus concrete structs dispatched explicitly by the caller,
// not by a runtime registry — the same "avoid runtime trait-object
// costs" shape spec.md §9 asks for.
package provider

// Provider is the capability set the repository manager needs to
// persist and retrieve archive bytes. A location is an opaque string
// interpretable only by the provider implementation (a filesystem path
// for the integrated provider; unused by the null provider).
type Provider interface {
	Exists(location string) bool
	Read(location string) ([]byte, error)
	Write(location string, data []byte) error
	Remove(location string) error
	// Integrated reports whether this provider can perform real file
	// I/O. The repository manager checks this on each open/save call to
	// choose its execution strategy (spec.md §5).
	Integrated() bool
}
