// Package catalog holds the immutable corpus of detection patterns the
// gateway evaluates: SQL injection, destructive and schema operations,
// prompt injection, harmful content, crypto risk markers, and the
// sensitive-column patterns. Patterns are compiled eagerly at startup
// and shared read-only; a compile failure or duplicate id is fatal.
package catalog
