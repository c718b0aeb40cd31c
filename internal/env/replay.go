package env

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Replay stores a deterministic direction trace for playback
type Replay struct {
	Generation int          `json:"generation"`
	Seed       int64        `json:"seed"`
	Directions []Direction  `json:"directions"`
	FinalStats EpisodeStats `json:"final_stats"`
	Config     ReplayConfig `json:"config"`
}

// ReplayConfig stores the field size for replay
type ReplayConfig struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewReplay creates a new replay recorder
func NewReplay(seed int64, config ReplayConfig) *Replay {
	return &Replay{
		Seed:       seed,
		Directions: make([]Direction, 0, 256),
		Config:     config,
	}
}

// Record adds a direction to the replay
func (r *Replay) Record(dir Direction) {
	r.Directions = append(r.Directions, dir)
}

// SetFinalStats sets the final episode statistics
func (r *Replay) SetFinalStats(stats EpisodeStats) {
	r.FinalStats = stats
}

// Save writes the replay to a file
func (r *Replay) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReplay loads a replay from a file
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Playback recreates the starting world of the replay. The world has no
// network; it is driven by PlaybackStep.
func (r *Replay) Playback() *World {
	return NewWorld(r.Config.Width, r.Config.Height, nil, r.Seed)
}

// PlaybackStep runs the replay up to step n
func (r *Replay) PlaybackStep(w *World, step int) {
	if step > len(r.Directions) {
		step = len(r.Directions)
	}
	for i := w.Age; i < step && w.Alive; i++ {
		w.Advance(r.Directions[i])
	}
	// Starvation is applied by the evaluator, not by the world itself
	if step == len(r.Directions) && w.Alive && r.FinalStats.Death == DeathStarved {
		w.Kill(DeathStarved)
	}
}
