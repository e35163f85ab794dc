package predict

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// drawKey seeds one prediction call. Two calls with the same drawKey and
// identical inputs MUST produce bit-for-bit identical results.
type drawKey int64

// RNG subsystem names. Each sampling concern gets its own deterministically
// derived stream so that, e.g., adding a grouping factor does not perturb the
// fixed-effect draws of an otherwise identical run.
const subsystemFixef = "fixef"

func subsystemRanef(factor string) string {
	return "ranef/" + factor
}

func subsystemResidual(obs int) string {
	return fmt.Sprintf("residual/%d", obs)
}

// partitionedRNG provides deterministic, isolated RNG instances per subsystem.
// Derived seed: key XOR fnv1a64(subsystem name).
//
// Thread-safety: NOT thread-safe. Derive every stream on the caller goroutine
// before fanning work out to workers.
type partitionedRNG struct {
	key        drawKey
	subsystems map[string]*rand.Rand
}

func newPartitionedRNG(key drawKey) *partitionedRNG {
	return &partitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// forSubsystem returns the cached RNG for the named subsystem, creating it on
// first use. Never returns nil.
func (p *partitionedRNG) forSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
