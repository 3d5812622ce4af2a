// Package sanitizer normalizes free-text input before it is validated and
// stored. All functions are idempotent.
package sanitizer
