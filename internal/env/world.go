package env

import (
	"fmt"
	"math/rand"

	"snakeevo/internal/nn"
)

// World is one simulated agent: a network driving a snake on its own field
type World struct {
	Width  int
	Height int

	Network *nn.Network
	Snake   Snake
	Goal    Position

	// State
	Alive          bool
	Age            int // ticks lived
	StepsSinceGoal int
	Score          int // goals eaten
	Fitness        int
	DeathReason    DeathReason
	Seed           int64

	fitnessDone bool
	rng         *rand.Rand
}

// NewWorld places a one-segment snake in the middle of the field and a goal
// somewhere in the interior. The seed drives goal placement only.
func NewWorld(width, height int, network *nn.Network, seed int64) *World {
	if network != nil && (network.InputSize() != InputSize || network.OutputSize() != OutputCount) {
		panic(fmt.Sprintf("env: network shape %v does not map %d sensors to %d directions",
			network.Shape(), InputSize, OutputCount))
	}
	w := &World{
		Width:   width,
		Height:  height,
		Network: network,
		Snake: Snake{
			Body: []Position{{X: width / 2, Y: height / 2}},
		},
		Alive: true,
		Seed:  seed,
		rng:   rand.New(rand.NewSource(seed)),
	}
	w.relocateGoal()
	return w
}

// Tick advances the world by one step using the network's decision
func (w *World) Tick() {
	if !w.Alive {
		return
	}
	w.Advance(w.Decide())
}

// Decide asks the network which way to go from the current state
func (w *World) Decide() Direction {
	return DirectionFromOutputs(w.Network.Propagate(Encode(w)))
}

// Advance moves the snake toward dir and resolves eating and collisions.
// It counts as one tick of the agent's life.
func (w *World) Advance(dir Direction) {
	if !w.Alive {
		return
	}

	w.Age++
	w.StepsSinceGoal++

	tail := w.Snake.Step(dir)

	// Check goal
	if w.Snake.Head() == w.Goal {
		w.Snake.Grow(tail)
		w.Score++
		w.StepsSinceGoal = 0
		w.relocateGoal()
	}

	if reason := w.collision(); reason != DeathNone {
		w.Kill(reason)
	}
}

// Kill marks the world dead and computes its fitness once
func (w *World) Kill(reason DeathReason) {
	if !w.Alive {
		return
	}
	w.Alive = false
	w.DeathReason = reason
	w.ComputeFitness()
}

// Starving reports whether the snake has gone too long without eating
func (w *World) Starving() bool {
	return w.StepsSinceGoal >= 2*(w.Width+w.Height)
}

// ComputeFitness sets Fitness = score*100 + age/4 the first time it is called
func (w *World) ComputeFitness() int {
	if !w.fitnessDone {
		w.Fitness = w.Score*100 + w.Age/4
		w.fitnessDone = true
	}
	return w.Fitness
}

// HasFitness reports whether ComputeFitness already ran
func (w *World) HasFitness() bool {
	return w.fitnessDone
}

// collision checks the head against the body and the lethal border cells
func (w *World) collision() DeathReason {
	head := w.Snake.Head()
	for _, p := range w.Snake.Body[1:] {
		if p == head {
			return DeathSelf
		}
	}
	if head.X <= 0 || head.Y <= 0 || head.X >= w.Width-1 || head.Y >= w.Height-1 {
		return DeathWall
	}
	return DeathNone
}

// relocateGoal picks a uniform interior cell. The body is not avoided.
func (w *World) relocateGoal() {
	w.Goal = Position{
		X: 1 + w.rng.Intn(w.Width-2),
		Y: 1 + w.rng.Intn(w.Height-2),
	}
}

// Stats returns the episode statistics
func (w *World) Stats() EpisodeStats {
	return EpisodeStats{
		Score:   w.Score,
		Age:     w.Age,
		Fitness: w.Fitness,
		Length:  len(w.Snake.Body),
		Death:   w.DeathReason,
		Seed:    w.Seed,
	}
}

// View is a copy of the display-relevant state of a world
type View struct {
	Width   int        `json:"width"`
	Height  int        `json:"height"`
	Body    []Position `json:"body"`
	Heading string     `json:"heading"`
	Goal    Position   `json:"goal"`
	Alive   bool       `json:"alive"`
	Age     int        `json:"age"`
	Score   int        `json:"score"`
	Fitness int        `json:"fitness"`
	Death   string     `json:"death"`
}

// View snapshots the world for an external renderer
func (w *World) View() View {
	body := make([]Position, len(w.Snake.Body))
	copy(body, w.Snake.Body)
	return View{
		Width:   w.Width,
		Height:  w.Height,
		Body:    body,
		Heading: w.Snake.Heading.String(),
		Goal:    w.Goal,
		Alive:   w.Alive,
		Age:     w.Age,
		Score:   w.Score,
		Fitness: w.Fitness,
		Death:   w.DeathReason.String(),
	}
}
