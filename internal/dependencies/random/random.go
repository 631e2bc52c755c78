package random

import "math/rand/v2"

// Random provides random selection that can be mocked for testing.
// Game-master selection goes through this interface so start behavior is
// reproducible under test.
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int
}

// PCGRandom implements Random using math/rand/v2's default source
type PCGRandom struct{}

// New creates a new PCGRandom
func New() *PCGRandom {
	return &PCGRandom{}
}

// Intn returns a random int in [0, n)
func (r *PCGRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}
