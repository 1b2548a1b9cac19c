// Package logging builds the slog loggers used across prism and provides
// shared attribute helpers so components emit uniformly keyed fields.
package logging
