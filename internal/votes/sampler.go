package votes

import "math/rand/v2"

// Shuffle returns a uniformly random permutation of the input, leaving the
// input untouched. Vote listings are shuffled before being returned so they
// do not come back in insertion order.
func Shuffle[T any](items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
