package predict

import (
	"testing"
)

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	rng1 := newPartitionedRNG(42)
	rng2 := newPartitionedRNG(42)

	for i := 0; i < 5; i++ {
		v1 := rng1.forSubsystem(subsystemFixef).Float64()
		v2 := rng2.forSubsystem(subsystemFixef).Float64()
		if v1 != v2 {
			t.Errorf("draw %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_SubsystemIsolation(t *testing.T) {
	// Draining one subsystem must not perturb another.
	rngA := newPartitionedRNG(42)
	rngB := newPartitionedRNG(42)

	for i := 0; i < 100; i++ {
		rngA.forSubsystem(subsystemFixef).Float64()
	}

	a := rngA.forSubsystem(subsystemRanef("subject")).Float64()
	b := rngB.forSubsystem(subsystemRanef("subject")).Float64()
	if a != b {
		t.Errorf("ranef stream perturbed by fixef draws: %v != %v", a, b)
	}
}

func TestPartitionedRNG_DistinctStreams(t *testing.T) {
	rng := newPartitionedRNG(42)
	a := rng.forSubsystem(subsystemFixef).Float64()
	b := rng.forSubsystem(subsystemRanef("subject")).Float64()
	c := rng.forSubsystem(subsystemResidual(0)).Float64()
	if a == b || b == c || a == c {
		t.Errorf("subsystem streams not distinct: %v, %v, %v", a, b, c)
	}
}

func TestPartitionedRNG_CachesInstances(t *testing.T) {
	rng := newPartitionedRNG(7)
	if rng.forSubsystem(subsystemFixef) != rng.forSubsystem(subsystemFixef) {
		t.Error("same subsystem returned different RNG instances")
	}
}
