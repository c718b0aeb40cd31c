package ga

import (
	"math/rand"
)

// TournamentSelect samples k distinct agents and returns the index of the
// fittest. Ties go to the first sampled.
func TournamentSelect(agents []*Agent, k int, rng *rand.Rand) int {
	if len(agents) == 0 {
		return -1
	}
	if k > len(agents) {
		k = len(agents)
	}
	if k < 1 {
		k = 1
	}

	sample := rng.Perm(len(agents))[:k]
	best := sample[0]
	for _, idx := range sample[1:] {
		if agents[idx].Fitness > agents[best].Fitness {
			best = idx
		}
	}
	return best
}

// SelectParents runs two tournaments and returns two different indices.
// The second tournament is redrawn until it picks another agent; its size is
// capped below the population so a sample without the first parent exists.
func SelectParents(agents []*Agent, k int, rng *rand.Rand) (int, int) {
	if len(agents) < 2 {
		panic("ga: parent selection needs at least two agents")
	}
	p1 := TournamentSelect(agents, k, rng)
	k2 := min(k, len(agents)-1)
	p2 := TournamentSelect(agents, k2, rng)
	for p2 == p1 {
		p2 = TournamentSelect(agents, k2, rng)
	}
	return p1, p2
}
