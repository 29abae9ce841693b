package testenv

import (
	"math/rand"

	"github.com/stretchr/testify/assert"
)

// RandBytes fills p with non-crypto-safe random bytes.
func RandBytes(p []byte) {
	for i := range p {
		p[i] = byte(rand.Uint32())
	}
}

// BytesEqual asserts that actual equals expected, treating nil and
// zero-length slices as the same.
func BytesEqual(a *assert.Assertions, expected, actual []byte, msgAndArgs ...any) bool {
	if len(expected)+len(actual) == 0 {
		return true
	}
	return a.Equal(expected, actual, msgAndArgs...)
}
