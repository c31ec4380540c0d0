// Package observability records supercraft lifecycle events as JSON Lines
// under the project's .supercraft directory and derives activity summaries
// and alerts from them on demand.
package observability
