package env

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func worldAt(width, height int, body []Position, heading Direction, goal Position) *World {
	w := NewWorld(width, height, nil, 1)
	w.Snake = Snake{Body: body, Heading: heading}
	w.Goal = goal
	return w
}

func TestEncodeLength(t *testing.T) {
	w := NewWorld(40, 40, nil, 3)
	assert.Len(t, Encode(w), InputSize)
}

func TestEncodeWallSensors(t *testing.T) {
	w := worldAt(10, 8, []Position{{X: 2, Y: 5}}, DirRight, Position{X: 7, Y: 1})
	in := Encode(w)

	// right 7, up 5, left 2, down 2
	assert.InDelta(t, 1.0/7, in[WallAxisOffset+0], 1e-12)
	assert.InDelta(t, 1.0/5, in[WallAxisOffset+1], 1e-12)
	assert.InDelta(t, 1.0/2, in[WallAxisOffset+2], 1e-12)
	assert.InDelta(t, 1.0/2, in[WallAxisOffset+3], 1e-12)

	// diagonals take the nearer axis
	assert.InDelta(t, 1.0/5, in[WallDiagOffset+0], 1e-12)
	assert.InDelta(t, 1.0/2, in[WallDiagOffset+1], 1e-12)
	assert.InDelta(t, 1.0/2, in[WallDiagOffset+2], 1e-12)
	assert.InDelta(t, 1.0/2, in[WallDiagOffset+3], 1e-12)
}

func TestEncodeWallOnBorderIsInfinite(t *testing.T) {
	w := worldAt(10, 10, []Position{{X: 0, Y: 4}}, DirLeft, Position{X: 5, Y: 5})
	in := Encode(w)
	assert.True(t, math.IsInf(in[WallAxisOffset+2], 1))
	assert.True(t, math.IsInf(in[WallDiagOffset+1], 1))
}

func TestEncodeBodySensors(t *testing.T) {
	body := []Position{
		{X: 5, Y: 5}, // head
		{X: 8, Y: 5}, // right 3
		{X: 7, Y: 5}, // right 2 (nearer)
		{X: 5, Y: 2}, // up 3
		{X: 3, Y: 3}, // left-up 2
		{X: 6, Y: 6}, // right-down 1
		{X: 4, Y: 9}, // off any ray
	}
	w := worldAt(12, 12, body, DirUp, Position{X: 1, Y: 1})
	in := Encode(w)

	assert.InDelta(t, 1.0/2, in[BodyAxisOffset+0], 1e-12)
	assert.InDelta(t, 1.0/3, in[BodyAxisOffset+1], 1e-12)
	assert.True(t, math.IsInf(in[BodyAxisOffset+2], 1), "nothing to the left")
	assert.True(t, math.IsInf(in[BodyAxisOffset+3], 1), "nothing below")

	assert.True(t, math.IsInf(in[BodyDiagOffset+0], 1), "nothing right-up")
	assert.InDelta(t, 1.0/2, in[BodyDiagOffset+1], 1e-12)
	assert.True(t, math.IsInf(in[BodyDiagOffset+2], 1), "nothing left-down")
	assert.InDelta(t, 1.0, in[BodyDiagOffset+3], 1e-12)
}

func TestEncodeLoneHeadHasNoBodySignal(t *testing.T) {
	w := worldAt(10, 10, []Position{{X: 5, Y: 5}}, DirNone, Position{X: 2, Y: 3})
	in := Encode(w)
	for i := BodyAxisOffset; i < GoalAxisOffset; i++ {
		assert.True(t, math.IsInf(in[i], 1), "index %d", i)
	}
}

func TestEncodeGoalAligned(t *testing.T) {
	w := worldAt(12, 12, []Position{{X: 5, Y: 5}}, DirLeft, Position{X: 5, Y: 9})
	in := Encode(w)

	for i := 0; i < 4; i++ {
		if i == 3 {
			assert.InDelta(t, 1.0/4, in[GoalAxisOffset+i], 1e-12)
			continue
		}
		assert.True(t, math.IsInf(in[GoalAxisOffset+i], 1), "axis %d", i)
	}
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsInf(in[GoalDiagOffset+i], 1), "diag %d", i)
	}

	// below only
	assert.Equal(t, []float64{0, 0, 0, 1}, in[GoalQuadrantOffset:GoalQuadrantOffset+4])
	assert.InDelta(t, 1.0/4, in[GoalDistanceIndex], 1e-12)
	assert.Equal(t, []float64{-1, 0}, in[HeadingOffset:])
}

func TestEncodeGoalDiagonal(t *testing.T) {
	w := worldAt(12, 12, []Position{{X: 5, Y: 5}}, DirDown, Position{X: 8, Y: 2})
	in := Encode(w)

	assert.InDelta(t, 1.0/3, in[GoalDiagOffset+0], 1e-12)
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsInf(in[GoalAxisOffset+i], 1))
	}
	// right and up
	assert.Equal(t, []float64{1, 1, 0, 0}, in[GoalQuadrantOffset:GoalQuadrantOffset+4])
	assert.InDelta(t, 1.0/6, in[GoalDistanceIndex], 1e-12)
	assert.Equal(t, []float64{0, 1}, in[HeadingOffset:])
}

func TestEncodeQuadrantFlagsIgnoreMagnitude(t *testing.T) {
	near := Encode(worldAt(40, 40, []Position{{X: 20, Y: 20}}, DirUp, Position{X: 19, Y: 21}))
	far := Encode(worldAt(40, 40, []Position{{X: 20, Y: 20}}, DirUp, Position{X: 2, Y: 37}))
	require.Len(t, near, InputSize)
	assert.Equal(t, near[GoalQuadrantOffset:GoalQuadrantOffset+4], far[GoalQuadrantOffset:GoalQuadrantOffset+4])
	assert.Equal(t, []float64{0, 0, 1, 1}, far[GoalQuadrantOffset:GoalQuadrantOffset+4])
}

func TestEncodeIsDeterministic(t *testing.T) {
	body := []Position{{X: 4, Y: 4}, {X: 4, Y: 5}, {X: 5, Y: 5}}
	a := Encode(worldAt(9, 9, body, DirUp, Position{X: 2, Y: 2}))
	b := Encode(worldAt(9, 9, body, DirUp, Position{X: 2, Y: 2}))
	assert.Equal(t, a, b)
}
