package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakeevo/internal/env"
)

func recordWalk(dirs ...env.Direction) *env.Replay {
	replay := env.NewReplay(3, env.ReplayConfig{Width: 7, Height: 7})
	w := replay.Playback()
	for _, d := range dirs {
		if !w.Alive {
			break
		}
		replay.Record(d)
		w.Advance(d)
	}
	replay.SetFinalStats(w.Stats())
	return replay
}

func TestPlayMatchesRecording(t *testing.T) {
	replay := recordWalk(env.DirUp, env.DirUp, env.DirUp)

	var out bytes.Buffer
	final, err := play(&out, replay, true)
	require.NoError(t, err)
	assert.Equal(t, replay.FinalStats, final)
	assert.Equal(t, env.DeathWall, final.Death)
	assert.Equal(t, 3, strings.Count(out.String(), "step "))
}

func TestPlayDetectsDivergence(t *testing.T) {
	replay := recordWalk(env.DirLeft, env.DirLeft)
	replay.FinalStats.Age = 99

	_, err := play(&bytes.Buffer{}, replay, false)
	assert.ErrorContains(t, err, "diverged")
}

func TestRender(t *testing.T) {
	v := env.View{
		Width:  5,
		Height: 4,
		Body:   []env.Position{{X: 1, Y: 1}, {X: 2, Y: 1}},
		Goal:   env.Position{X: 3, Y: 2},
	}
	want := "#####\n" +
		"#@o.#\n" +
		"#..*#\n" +
		"#####\n"
	assert.Equal(t, want, render(v))
}
