package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Neuron holds a bias and one weight per input of the previous layer
type Neuron struct {
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights"`
}

// Layer is an ordered set of neurons fed from the same inputs
type Layer struct {
	Neurons []Neuron `json:"neurons"`
}

// Network is a fully connected feedforward network. The input layer is not
// materialized: Layers[0] is the first hidden layer.
type Network struct {
	Layers []Layer `json:"layers"`
}

// Propagate computes relu(bias + input·weights).
// Infinite inputs are valid and follow IEEE arithmetic.
func (n *Neuron) Propagate(input []float64) float64 {
	if len(input) != len(n.Weights) {
		panic(fmt.Sprintf("nn: neuron expects %d inputs, got %d", len(n.Weights), len(input)))
	}
	return relu(n.Bias + floats.Dot(input, n.Weights))
}

// Clone returns a deep copy of the neuron
func (n *Neuron) Clone() Neuron {
	return Neuron{Bias: n.Bias, Weights: CloneGenome(n.Weights)}
}

// Propagate applies every neuron to the same input
func (l *Layer) Propagate(input []float64) []float64 {
	out := make([]float64, len(l.Neurons))
	for i := range l.Neurons {
		out[i] = l.Neurons[i].Propagate(input)
	}
	return out
}

// Propagate feeds the input through all layers in order and returns the
// activations of the last layer.
func (n *Network) Propagate(input []float64) []float64 {
	out := input
	for i := range n.Layers {
		out = n.Layers[i].Propagate(out)
	}
	return out
}

// InputSize returns the number of inputs the first layer expects
func (n *Network) InputSize() int {
	if len(n.Layers) == 0 || len(n.Layers[0].Neurons) == 0 {
		return 0
	}
	return len(n.Layers[0].Neurons[0].Weights)
}

// OutputSize returns the neuron count of the last layer
func (n *Network) OutputSize() int {
	if len(n.Layers) == 0 {
		return 0
	}
	return len(n.Layers[len(n.Layers)-1].Neurons)
}

// Shape returns the architecture as layer sizes, input size first
func (n *Network) Shape() []int {
	shape := make([]int, 0, len(n.Layers)+1)
	shape = append(shape, n.InputSize())
	for _, l := range n.Layers {
		shape = append(shape, len(l.Neurons))
	}
	return shape
}

// SameShape reports whether both networks have identical layer and neuron counts
func (n *Network) SameShape(other *Network) bool {
	if len(n.Layers) != len(other.Layers) {
		return false
	}
	for i := range n.Layers {
		if len(n.Layers[i].Neurons) != len(other.Layers[i].Neurons) {
			return false
		}
	}
	return true
}

// Clone makes a deep copy of the network
func (n *Network) Clone() *Network {
	c := &Network{Layers: make([]Layer, len(n.Layers))}
	for i, l := range n.Layers {
		neurons := make([]Neuron, len(l.Neurons))
		for j := range l.Neurons {
			neurons[j] = l.Neurons[j].Clone()
		}
		c.Layers[i] = Layer{Neurons: neurons}
	}
	return c
}

// NewRandomNetwork builds a network for the given architecture. sizes[0] is
// the input size; every weight and bias is uniform in [-1, 1].
func NewRandomNetwork(sizes []int, rng *rand.Rand) *Network {
	if len(sizes) < 2 {
		panic(fmt.Sprintf("nn: architecture needs an input and at least one layer, got %v", sizes))
	}
	n := &Network{Layers: make([]Layer, 0, len(sizes)-1)}
	for li := 1; li < len(sizes); li++ {
		neurons := make([]Neuron, sizes[li])
		for j := range neurons {
			neurons[j] = Neuron{
				Bias:    RandomWeight(rng),
				Weights: RandomGenome(sizes[li-1], rng),
			}
		}
		n.Layers = append(n.Layers, Layer{Neurons: neurons})
	}
	return n
}

// RandomWeight draws a uniform value in [-1, 1]
func RandomWeight(rng *rand.Rand) float64 {
	return 1 - 2*rng.Float64()
}

// RandomGenome generates size uniform weights in [-1, 1]
func RandomGenome(size int, rng *rand.Rand) []float64 {
	genome := make([]float64, size)
	for i := range genome {
		genome[i] = RandomWeight(rng)
	}
	return genome
}

// CloneGenome makes a copy of a weight vector
func CloneGenome(src []float64) []float64 {
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

// relu maps NaN to 0 as well
func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Argmax returns the index of the largest value; the first maximum wins and
// NaN values are skipped. All-NaN input yields 0.
func Argmax(vals []float64) int {
	return floats.MaxIdx(vals)
}
