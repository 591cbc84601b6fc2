package fixture

import (
	"math"
	"math/rand"
	"slices"
)

const (
	prngModulus    int64 = 2147483647
	prngMultiplier int64 = 16807
)

// PRNG is a Park-Miller linear congruential generator. It is not suitable for
// anything security related; it only makes shuffles reproducible from a seed.
type PRNG struct {
	state int64
}

// NewPRNG returns a generator whose state is the seed normalised into
// [1, 2147483646].
func NewPRNG(seed int64) *PRNG {
	state := seed % prngModulus
	if state <= 0 {
		state += prngModulus - 1
	}
	if state <= 0 {
		state = 1
	}
	return &PRNG{state: state}
}

// Next advances the generator and returns a value in [0, 1).
func (p *PRNG) Next() float64 {
	p.state = p.state * prngMultiplier % prngModulus
	return float64(p.state-1) / float64(prngModulus-1)
}

// NewSeed returns a fresh seed inside the generator's state range.
func NewSeed() int64 {
	return rand.Int63n(prngModulus-1) + 1
}

// Shuffle returns a Fisher-Yates permutation of ids driven by a PRNG built
// from seed. The input slice is left untouched.
func Shuffle(ids []int64, seed int64) []int64 {
	out := slices.Clone(ids)
	rng := NewPRNG(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(math.Floor(rng.Next() * float64(i+1)))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
