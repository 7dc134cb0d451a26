// Package conv provides bounds-checked integer conversions for values
// that end up in on-disk headers.
package conv
