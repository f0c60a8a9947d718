package simulate

import (
	"math/rand"
	"time"
)

// Source is the random source a simulation draws from.
// *math/rand.Rand satisfies it. A Source is not shared between goroutines.
type Source interface {
	Intn(n int) int
}

// defaultSeed replaces a zero seed so NewSeeded(0) stays reproducible.
const defaultSeed int64 = 1

// NewSeeded returns a deterministic source. A zero seed uses defaultSeed.
func NewSeeded(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// NewRandom returns a source seeded from the wall clock.
func NewRandom() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// deriveSeed mixes a parent seed and a stream id with the SplitMix64
// finalizer, giving each worker an independent stream.
func deriveSeed(parent int64, stream uint64) int64 {
	x := uint64(parent) ^ (stream + 0x9e3779b97f4a7c15)
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}
