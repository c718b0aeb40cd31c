package ga

import (
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"snakeevo/internal/env"
	"snakeevo/internal/nn"
)

// Agent is an evaluated individual. ID is an opaque identity, independent of
// the agent's evaluated content.
type Agent struct {
	ID      uuid.UUID
	Network *nn.Network
	Fitness int
	Stats   env.EpisodeStats
}

// Params are the genetic algorithm settings for one training run
type Params struct {
	Population     int
	Elites         int
	TournamentSize int
	MutationRate   float64
	CrossoverSwap  float64 // probability a neuron position swaps parents
}

// NewAgent wraps a network with a fresh identity
func NewAgent(network *nn.Network) *Agent {
	return &Agent{ID: uuid.New(), Network: network}
}

// RandomNetworks creates size random networks with the given architecture
func RandomNetworks(size int, layers []int, rng *rand.Rand) []*nn.Network {
	nets := make([]*nn.Network, size)
	for i := range nets {
		nets[i] = nn.NewRandomNetwork(layers, rng)
	}
	return nets
}

// SortByFitness sorts agents by fitness (descending), keeping the order of equals
func SortByFitness(agents []*Agent) {
	sort.SliceStable(agents, func(i, j int) bool {
		return agents[i].Fitness > agents[j].Fitness
	})
}

// TopK returns the top K agents by fitness without reordering the input
func TopK(agents []*Agent, k int) []*Agent {
	sorted := make([]*Agent, len(agents))
	copy(sorted, agents)
	SortByFitness(sorted)
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}

// Best returns the index of the agent with highest fitness, the first one on
// ties, or -1 when there are no agents
func Best(agents []*Agent) int {
	if len(agents) == 0 {
		return -1
	}
	best := 0
	for i, a := range agents[1:] {
		if a.Fitness > agents[best].Fitness {
			best = i + 1
		}
	}
	return best
}

// Elites returns copies of the networks of the n fittest agents
func Elites(agents []*Agent, n int) []*nn.Network {
	top := TopK(agents, n)
	nets := make([]*nn.Network, len(top))
	for i, a := range top {
		nets[i] = a.Network.Clone()
	}
	return nets
}

// Recombine builds the next generation's networks: crossover children for
// every non-elite slot followed by the unmodified elites.
func Recombine(agents []*Agent, p Params, rng *rand.Rand) []*nn.Network {
	slots := p.Population - p.Elites
	next := make([]*nn.Network, 0, p.Population)

	for len(next) < slots {
		i, j := SelectParents(agents, p.TournamentSize, rng)
		c1, c2 := CrossoverNetworks(agents[i].Network, agents[j].Network, p.CrossoverSwap, p.MutationRate, rng)
		next = append(next, c1)
		// An odd slot count keeps only the first child of the last pair
		if len(next) < slots {
			next = append(next, c2)
		}
	}

	return append(next, Elites(agents, p.Elites)...)
}
