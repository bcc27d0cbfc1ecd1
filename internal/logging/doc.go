// Package logging wraps log/slog with the handlers and attribute helpers
// used across tonearm. It provides a console handler for interactive runs,
// a JSON handler for machine-readable logs, and a no-op logger for tests.
package logging
