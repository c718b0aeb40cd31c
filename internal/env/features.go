package env

// InputSize is the length of the vector produced by Encode:
// 29 sensor readings followed by the heading (x, y).
const InputSize = 31

// Sensor groups, in the order Encode emits them.
// Axis groups are ordered right, up, left, down; diagonal groups are
// ordered right-up, left-up, left-down, right-down.
const (
	WallAxisOffset     = 0
	WallDiagOffset     = 4
	BodyAxisOffset     = 8
	BodyDiagOffset     = 12
	GoalAxisOffset     = 16
	GoalDiagOffset     = 20
	GoalQuadrantOffset = 24
	GoalDistanceIndex  = 28
	HeadingOffset      = 29
)

// Encode builds the network input for the current world state.
// Distances are encoded as reciprocals, so a missing obstacle (distance 0)
// becomes +Inf on purpose.
func Encode(w *World) []float64 {
	inputs := make([]float64, 0, InputSize)
	inputs = append(inputs, wallSensors(w)...)
	inputs = append(inputs, bodySensors(w)...)
	inputs = append(inputs, goalSensors(w)...)
	heading := w.Snake.Heading.Vector()
	inputs = append(inputs, float64(heading.X), float64(heading.Y))
	return inputs
}

// wallSensors: 8 floats - axis distances and the nearer axis of each diagonal
func wallSensors(w *World) []float64 {
	head := w.Snake.Head()
	right := float64(w.Width - head.X - 1)
	up := float64(head.Y)
	left := float64(head.X)
	down := float64(w.Height - head.Y - 1)

	return []float64{
		1 / right,
		1 / up,
		1 / left,
		1 / down,
		1 / min(right, up),
		1 / min(left, up),
		1 / min(left, down),
		1 / min(right, down),
	}
}

// bodySensors: 8 floats - nearest segment on each axis and diagonal ray
func bodySensors(w *World) []float64 {
	var axis, diag [4]int // 0 means nothing found
	head := w.Snake.Head()

	for _, p := range w.Snake.Body[1:] {
		off := p.Sub(head)
		if i, d, ok := axisRay(off); ok {
			axis[i] = nearest(axis[i], d)
		}
		if i, d, ok := diagonalRay(off); ok {
			diag[i] = nearest(diag[i], d)
		}
	}

	out := make([]float64, 0, 8)
	for _, d := range axis {
		out = append(out, 1/float64(d))
	}
	for _, d := range diag {
		out = append(out, 1/float64(d))
	}
	return out
}

// goalSensors: 13 floats - goal along axes and diagonals, quadrant flags,
// and the reciprocal Manhattan distance
func goalSensors(w *World) []float64 {
	var axis, diag [4]int
	off := w.Goal.Sub(w.Snake.Head())

	if i, d, ok := axisRay(off); ok {
		axis[i] = d
	}
	if i, d, ok := diagonalRay(off); ok {
		diag[i] = d
	}

	out := make([]float64, 0, 13)
	for _, d := range axis {
		out = append(out, 1/float64(d))
	}
	for _, d := range diag {
		out = append(out, 1/float64(d))
	}

	out = append(out,
		boolToFloat(off.X > 0),
		boolToFloat(off.Y < 0),
		boolToFloat(off.X < 0),
		boolToFloat(off.Y > 0),
	)

	dist := off.Abs()
	out = append(out, 1/float64(dist.X+dist.Y))
	return out
}

// axisRay classifies an offset lying on a row or column through the head.
// Index order is right, up, left, down.
func axisRay(off Position) (int, int, bool) {
	switch {
	case off.Y == 0 && off.X > 0:
		return 0, off.X, true
	case off.X == 0 && off.Y < 0:
		return 1, -off.Y, true
	case off.Y == 0 && off.X < 0:
		return 2, -off.X, true
	case off.X == 0 && off.Y > 0:
		return 3, off.Y, true
	}
	return 0, 0, false
}

// diagonalRay classifies an offset lying on a diagonal through the head.
// Index order is right-up, left-up, left-down, right-down.
func diagonalRay(off Position) (int, int, bool) {
	a := off.Abs()
	if a.X != a.Y || a.X == 0 {
		return 0, 0, false
	}
	switch {
	case off.X > 0 && off.Y < 0:
		return 0, a.X, true
	case off.X < 0 && off.Y < 0:
		return 1, a.X, true
	case off.X < 0 && off.Y > 0:
		return 2, a.X, true
	default:
		return 3, a.X, true
	}
}

func nearest(cur, d int) int {
	if cur == 0 || d < cur {
		return d
	}
	return cur
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
