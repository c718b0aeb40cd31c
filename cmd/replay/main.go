package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"snakeevo/internal/env"
)

func main() {
	// Parse flags
	replayPath := flag.String("replay", "artifacts/replay_gen100.json", "path to a replay written by train")
	frames := flag.Bool("frames", false, "print the field after every step")
	flag.Parse()

	replay, err := env.LoadReplay(*replayPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading replay: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Replay of generation %d (seed=%d, %dx%d, %d steps)\n",
		replay.Generation, replay.Seed, replay.Config.Width, replay.Config.Height, len(replay.Directions))

	final, err := play(os.Stdout, replay, *frames)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Death: %s | Score: %d | Age: %d | Length: %d | Fitness: %d\n",
		final.Death, final.Score, final.Age, final.Length, final.Fitness)
}

// play re-simulates the replay and checks it ends the way it was recorded
func play(out io.Writer, replay *env.Replay, frames bool) (env.EpisodeStats, error) {
	w := replay.Playback()
	for step := 1; step <= len(replay.Directions); step++ {
		replay.PlaybackStep(w, step)
		if frames {
			fmt.Fprintf(out, "step %d heading %s\n%s", step, w.Snake.Heading, render(w.View()))
		}
	}

	final := w.Stats()
	if final != replay.FinalStats {
		return final, fmt.Errorf("replay diverged: recorded %+v, simulated %+v", replay.FinalStats, final)
	}
	return final, nil
}

// render draws the field as text: '#' border, '@' head, 'o' body, '*' goal
func render(v env.View) string {
	grid := make([][]byte, v.Height)
	for y := range grid {
		grid[y] = make([]byte, v.Width)
		for x := range grid[y] {
			if x == 0 || y == 0 || x == v.Width-1 || y == v.Height-1 {
				grid[y][x] = '#'
			} else {
				grid[y][x] = '.'
			}
		}
	}

	put := func(p env.Position, c byte) {
		if p.X >= 0 && p.X < v.Width && p.Y >= 0 && p.Y < v.Height {
			grid[p.Y][p.X] = c
		}
	}
	put(v.Goal, '*')
	for i := len(v.Body) - 1; i >= 0; i-- {
		if i == 0 {
			put(v.Body[i], '@')
		} else {
			put(v.Body[i], 'o')
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String()
}
