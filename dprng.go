package abcalc

// DPRNG is a deterministic xorshift* generator (see https://en.wikipedia.org/wiki/Xorshift#xorshift*)
// with a period of 2^64-1 and constant runtime per draw. It is neither cryptographically secure
// nor safe for concurrent use.
//
// *DPRNG satisfies math/rand/v2.Source, so it drives the gonum Beta and Binomial distributions of
// the Monte Carlo and bootstrap stages: the same seed yields the same posterior draws.
// The state must not be zero.
type DPRNG struct {
	State uint64
	Round uint64 // draws so far
}

// NewDPRNG returns a DPRNG seeded with seed[0]. A missing or zero seed is replaced by a random
// non-zero one.
func NewDPRNG(seed ...uint64) *DPRNG {
	var s uint64
	if len(seed) > 0 {
		s = seed[0]
	}
	if s == 0 {
		s = NewCPRNG(64).Seed()
	}
	return &DPRNG{State: s}
}

// Uint64 advances the generator and returns the next value.
func (thisState *DPRNG) Uint64() uint64 {
	x := thisState.State
	x ^= x >> 12
	x ^= x << 25
	x ^= x >> 27
	thisState.State = x
	thisState.Round++
	return x * 0x2545F4914F6CDD1D
}
