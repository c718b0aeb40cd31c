package ga

import (
	"math/rand"

	"snakeevo/internal/nn"
)

// Mutate rerolls a neuron with probability rate. A single draw gates both
// the weights and the bias, so they are replaced together. Reports whether
// the neuron changed.
func Mutate(n *nn.Neuron, rate float64, rng *rand.Rand) bool {
	chance := rng.Float64()
	if chance < rate {
		for i := range n.Weights {
			n.Weights[i] = nn.RandomWeight(rng)
		}
	}
	if chance < rate {
		n.Bias = nn.RandomWeight(rng)
	}
	return chance < rate
}
