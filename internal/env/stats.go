package env

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// DeathReason indicates how the snake died
type DeathReason int

const (
	DeathNone    DeathReason = iota
	DeathWall                // touched a border cell
	DeathSelf                // hit own body
	DeathStarved             // no goal for too long
)

func (d DeathReason) String() string {
	switch d {
	case DeathNone:
		return "none"
	case DeathWall:
		return "wall"
	case DeathSelf:
		return "self"
	case DeathStarved:
		return "starved"
	default:
		return "unknown"
	}
}

// EpisodeStats captures the outcome of one world
type EpisodeStats struct {
	Score   int         `json:"score"`   // goals eaten
	Age     int         `json:"age"`     // ticks survived
	Fitness int         `json:"fitness"` // score*100 + age/4
	Length  int         `json:"length"`
	Death   DeathReason `json:"death"`
	Seed    int64       `json:"seed"`
}

// AggregatedStats holds statistics across many episodes
type AggregatedStats struct {
	FitnessBest   int
	FitnessMean   float64
	FitnessStd    float64
	FitnessMedian float64
	ScoreBest     int
	ScoreMean     float64
	AgeMean       float64
	LengthMax     int
	TotalTicks    int
	DeathCounts   map[DeathReason]int
	NumEpisodes   int
}

// Aggregate computes statistics from multiple episode stats
func Aggregate(episodes []EpisodeStats) AggregatedStats {
	agg := AggregatedStats{
		DeathCounts: make(map[DeathReason]int),
		NumEpisodes: len(episodes),
	}
	if len(episodes) == 0 {
		return agg
	}

	fitness := make([]float64, len(episodes))
	scores := make([]float64, len(episodes))
	ages := make([]float64, len(episodes))
	for i, ep := range episodes {
		fitness[i] = float64(ep.Fitness)
		scores[i] = float64(ep.Score)
		ages[i] = float64(ep.Age)
		agg.FitnessBest = max(agg.FitnessBest, ep.Fitness)
		agg.ScoreBest = max(agg.ScoreBest, ep.Score)
		agg.LengthMax = max(agg.LengthMax, ep.Length)
		agg.TotalTicks += ep.Age
		agg.DeathCounts[ep.Death]++
	}

	if len(fitness) > 1 {
		agg.FitnessMean, agg.FitnessStd = stat.MeanStdDev(fitness, nil)
	} else {
		agg.FitnessMean = fitness[0]
	}
	agg.ScoreMean = stat.Mean(scores, nil)
	agg.AgeMean = stat.Mean(ages, nil)

	slices.Sort(fitness)
	agg.FitnessMedian = stat.Quantile(0.5, stat.Empirical, fitness, nil)

	return agg
}
