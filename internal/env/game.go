package env

import (
	"fmt"

	"snakeevo/internal/nn"
)

// Position is a coordinate on the grid; y grows downward
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the component-wise sum
func (p Position) Add(o Position) Position {
	return Position{X: p.X + o.X, Y: p.Y + o.Y}
}

// Sub returns the component-wise difference
func (p Position) Sub(o Position) Position {
	return Position{X: p.X - o.X, Y: p.Y - o.Y}
}

// Abs returns the component-wise absolute value
func (p Position) Abs() Position {
	return Position{X: absInt(p.X), Y: absInt(p.Y)}
}

// Direction represents the snake's heading
type Direction int

const (
	DirNone Direction = iota // not moving yet
	DirUp
	DirDown
	DirLeft
	DirRight
)

// OutputCount is the number of network outputs a Direction is decoded from
const OutputCount = 4

// outputDirections maps network output index to direction
var outputDirections = [OutputCount]Direction{DirUp, DirDown, DirLeft, DirRight}

// DirectionFromOutputs picks the direction of the strongest output.
// Ties go to the lowest index, NaN outputs never win.
func DirectionFromOutputs(out []float64) Direction {
	if len(out) != OutputCount {
		panic(fmt.Sprintf("env: network must have %d outputs, got %d", OutputCount, len(out)))
	}
	return outputDirections[nn.Argmax(out)]
}

// Opposite returns the reverse heading
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return DirNone
}

// Vector returns the unit displacement for the direction
func (d Direction) Vector() Position {
	switch d {
	case DirUp:
		return Position{X: 0, Y: -1}
	case DirDown:
		return Position{X: 0, Y: 1}
	case DirLeft:
		return Position{X: -1, Y: 0}
	case DirRight:
		return Position{X: 1, Y: 0}
	}
	return Position{}
}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return "none"
	}
}

// Snake is the agent's body, head first
type Snake struct {
	Body    []Position
	Heading Direction
}

// Head returns the snake's head position
func (s *Snake) Head() Position {
	return s.Body[0]
}

// Tail returns the snake's tail position
func (s *Snake) Tail() Position {
	return s.Body[len(s.Body)-1]
}

// Step turns toward dir unless it is a reversal, then moves every segment
// into its predecessor's cell. It returns the tail cell that was vacated.
func (s *Snake) Step(dir Direction) Position {
	if dir.Opposite() != s.Heading {
		s.Heading = dir
	}
	newHead := s.Body[0].Add(s.Heading.Vector())
	prevTail := s.Tail()
	for i := len(s.Body) - 1; i > 0; i-- {
		s.Body[i] = s.Body[i-1]
	}
	s.Body[0] = newHead
	return prevTail
}

// Grow appends a segment at p, normally the tail returned by Step
func (s *Snake) Grow(p Position) {
	s.Body = append(s.Body, p)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
