package sim

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// PartitionedRNG provides isolated, deterministic RNG streams per named
// subsystem, so model code can draw randomness for (say) arrivals and
// service times without one consuming the other's sequence. Adapted from
// the teacher's cluster.PartitionedRNG: a subsystem's seed is derived from
// the master seed XORed with an FNV-1a hash of its name, so derivation is
// order-independent — the seed for "service" does not depend on whether
// "arrivals" was touched first.
type PartitionedRNG struct {
	masterSeed int64
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG rooted at masterSeed.
func NewPartitionedRNG(masterSeed int64) *PartitionedRNG {
	return &PartitionedRNG{
		masterSeed: masterSeed,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the RNG stream for name, creating it deterministically
// on first use. Repeated calls with the same name return the same instance.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.deriveSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// ForRun returns the RNG stream for the given run index, i.e.
// ForSubsystem("run_<index>"). RunSimulationSeries does not call it: it
// seeds each run's PartitionedRNG with the run index directly.
func (p *PartitionedRNG) ForRun(runIndex int) *rand.Rand {
	return p.ForSubsystem("run_" + strconv.Itoa(runIndex))
}

func (p *PartitionedRNG) deriveSeed(subsystemName string) int64 {
	h := fnv.New64a()
	h.Write([]byte(subsystemName))
	nameHash := int64(h.Sum64())
	return p.masterSeed ^ nameHash
}
