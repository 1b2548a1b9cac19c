// Package config loads, normalizes, and validates the prism configuration
// file. Provider credentials left empty in the file are filled from
// environment variables during normalization, so the rest of the codebase
// only ever sees an explicit Config value.
package config
