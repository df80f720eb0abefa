// Package shared provides small helpers used across the pipelines.
package shared

// WipeByteArray overwrites the contents of the provided byte slice with
// zeros. Used to drop normalized key material from memory once a pipeline
// request finishes with it. A nil slice is a no-op.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}
