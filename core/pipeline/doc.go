// Package pipeline runs the analytics stages over collections of
// transformers. Per-unit computations are independent and execute on a
// bounded worker pool; a unit's failure is recorded and never aborts its
// siblings. Cancellation is cooperative between units.
package pipeline
