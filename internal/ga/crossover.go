package ga

import (
	"fmt"
	"math/rand"

	"snakeevo/internal/nn"
)

// CrossoverNetworks recombines two parents of identical shape at neuron
// granularity. For every neuron position one coin decides whether the
// parents swap: child 1 takes parent a's neuron unless swapped, child 2 takes
// the other one. Each inherited neuron is copied whole and then mutated.
func CrossoverNetworks(a, b *nn.Network, swapRate, mutationRate float64, rng *rand.Rand) (*nn.Network, *nn.Network) {
	if !a.SameShape(b) {
		panic(fmt.Sprintf("ga: crossover of networks with different shapes %v and %v", a.Shape(), b.Shape()))
	}

	c1 := &nn.Network{Layers: make([]nn.Layer, len(a.Layers))}
	c2 := &nn.Network{Layers: make([]nn.Layer, len(a.Layers))}
	for li := range a.Layers {
		c1.Layers[li], c2.Layers[li] = crossoverLayers(&a.Layers[li], &b.Layers[li], swapRate, mutationRate, rng)
	}
	return c1, c2
}

func crossoverLayers(a, b *nn.Layer, swapRate, mutationRate float64, rng *rand.Rand) (nn.Layer, nn.Layer) {
	n := len(a.Neurons)
	l1 := nn.Layer{Neurons: make([]nn.Neuron, n)}
	l2 := nn.Layer{Neurons: make([]nn.Neuron, n)}

	for i := 0; i < n; i++ {
		from1, from2 := &a.Neurons[i], &b.Neurons[i]
		if rng.Float64() < swapRate {
			from1, from2 = from2, from1
		}
		l1.Neurons[i] = from1.Clone()
		Mutate(&l1.Neurons[i], mutationRate, rng)
		l2.Neurons[i] = from2.Clone()
		Mutate(&l2.Neurons[i], mutationRate, rng)
	}
	return l1, l2
}
