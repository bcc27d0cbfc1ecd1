package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying reconciliation failures. Callers match
// with errors.Is to decide whether a failure is a policy outcome, a
// provider problem, or a real fault.
var (
	// ErrProviderUnavailable marks a metadata source that could not be
	// reached; resolution continues with the remaining sources.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNoConfidentMatch is the normal outcome for a track no source
	// can attribute confidently. The file stays in Unknown Album.
	ErrNoConfidentMatch = errors.New("no confident match")
	// ErrDuplicateDetected means the resolved placement is already
	// occupied by another track with the same identity.
	ErrDuplicateDetected = errors.New("duplicate detected")
	// ErrFilesystemConflict means the destination path exists on disk
	// but is not indexed, so moving would clobber a foreign file.
	ErrFilesystemConflict = errors.New("filesystem conflict")
	// ErrIO marks read, write, move, or tag failures.
	ErrIO = errors.New("io failure")
)

// WrapError tags err with a sentinel marker and operation context.
func WrapError(marker error, operation, message string, err error) error {
	detail := buildDetail(operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(operation, message string) string {
	parts := make([]string, 0, 2)
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "reconcile failure"
	}
	return strings.Join(parts, ": ")
}
