// Package mode defines the processing modes a query can be routed to and the
// intent detector that may override the caller-supplied mode based on the
// query text alone.
package mode
