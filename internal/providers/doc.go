// Package providers defines the shared types and plumbing for the
// external metadata sources tonearm consults: candidate albums, source
// identity, release types, rate limiting, and retry behavior. The
// per-source HTTP clients live in subpackages.
package providers
