// Package providers defines the capability interfaces implemented by the
// upstream AI service clients, the normalized result shape, the string-prefix
// payload codec shared with the presentation layer, and the sentinel errors
// the orchestrator uses to classify provider failures.
package providers
