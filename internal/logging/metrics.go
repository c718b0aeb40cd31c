package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gocarina/gocsv"

	"snakeevo/internal/env"
	"snakeevo/internal/ga"
)

// Logger handles per-generation output: a console line, a CSV row and a JSON line
type Logger struct {
	log *slog.Logger

	csvFile          *os.File
	csvHeaderWritten bool
	jsonFile         *os.File
	jsonEnc          *json.Encoder
}

// NewLogger creates a new logger. An empty path disables that sink.
func NewLogger(log *slog.Logger, csvPath, jsonPath string) (*Logger, error) {
	if log == nil {
		log = slog.Default()
	}
	l := &Logger{log: log}

	if csvPath != "" {
		f, err := createFile(csvPath)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", csvPath, err)
		}
		l.csvFile = f
	}
	if jsonPath != "" {
		f, err := createFile(jsonPath)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("creating %s: %w", jsonPath, err)
		}
		l.jsonFile = f
		l.jsonEnc = json.NewEncoder(f)
	}
	return l, nil
}

func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}

// Close closes all log files
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range []*os.File{l.csvFile, l.jsonFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.csvFile, l.jsonFile, l.jsonEnc = nil, nil, nil
	return firstErr
}

// GenerationSummary holds per-generation statistics
type GenerationSummary struct {
	RunID          string  `csv:"run_id" json:"run_id"`
	Generation     int     `csv:"generation" json:"generation"`
	Population     int     `csv:"population" json:"population"`
	BestFitness    int     `csv:"best_fitness" json:"best_fitness"`
	MeanFitness    float64 `csv:"mean_fitness" json:"mean_fitness"`
	StdFitness     float64 `csv:"std_fitness" json:"std_fitness"`
	MedianFitness  float64 `csv:"median_fitness" json:"median_fitness"`
	BestScore      int     `csv:"best_score" json:"best_score"`
	MeanScore      float64 `csv:"mean_score" json:"mean_score"`
	BestScoreSoFar int     `csv:"best_score_so_far" json:"best_score_so_far"`
	MeanAge        float64 `csv:"mean_age" json:"mean_age"`
	MaxLength      int     `csv:"max_length" json:"max_length"`
	TotalTicks     int     `csv:"total_ticks" json:"total_ticks"`
	DeathsWall     int     `csv:"deaths_wall" json:"deaths_wall"`
	DeathsSelf     int     `csv:"deaths_self" json:"deaths_self"`
	DeathsStarved  int     `csv:"deaths_starved" json:"deaths_starved"`
	ElapsedMS      int64   `csv:"elapsed_ms" json:"elapsed_ms"`
}

// NewGenerationSummary flattens aggregated episode stats into a summary row
func NewGenerationSummary(runID string, gen int, agg env.AggregatedStats, bestSoFar int, elapsed time.Duration) GenerationSummary {
	return GenerationSummary{
		RunID:          runID,
		Generation:     gen,
		Population:     agg.NumEpisodes,
		BestFitness:    agg.FitnessBest,
		MeanFitness:    agg.FitnessMean,
		StdFitness:     agg.FitnessStd,
		MedianFitness:  agg.FitnessMedian,
		BestScore:      agg.ScoreBest,
		MeanScore:      agg.ScoreMean,
		BestScoreSoFar: bestSoFar,
		MeanAge:        agg.AgeMean,
		MaxLength:      agg.LengthMax,
		TotalTicks:     agg.TotalTicks,
		DeathsWall:     agg.DeathCounts[env.DeathWall],
		DeathsSelf:     agg.DeathCounts[env.DeathSelf],
		DeathsStarved:  agg.DeathCounts[env.DeathStarved],
		ElapsedMS:      elapsed.Milliseconds(),
	}
}

// LogGeneration writes a generation summary to every enabled sink
func (l *Logger) LogGeneration(s GenerationSummary) error {
	l.log.Info("generation",
		"gen", s.Generation,
		"best_fitness", s.BestFitness,
		"mean_fitness", fmt.Sprintf("%.1f", s.MeanFitness),
		"best_score", s.BestScore,
		"best_so_far", s.BestScoreSoFar,
		"ticks", humanize.Comma(int64(s.TotalTicks)),
		"deaths", fmt.Sprintf("W=%d S=%d St=%d", s.DeathsWall, s.DeathsSelf, s.DeathsStarved),
		"elapsed", time.Duration(s.ElapsedMS)*time.Millisecond,
	)

	if l.csvFile != nil {
		records := []GenerationSummary{s}
		if !l.csvHeaderWritten {
			// First write includes headers
			if err := gocsv.Marshal(records, l.csvFile); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
			l.csvHeaderWritten = true
		} else {
			if err := gocsv.MarshalWithoutHeaders(records, l.csvFile); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
	}

	if l.jsonEnc != nil {
		if err := l.jsonEnc.Encode(s); err != nil {
			return fmt.Errorf("writing json: %w", err)
		}
	}
	return nil
}

// LogBenchmark logs benchmark results averaged across the benchmarked networks
func (l *Logger) LogBenchmark(gen int, results []env.AggregatedStats) {
	if len(results) == 0 {
		return
	}

	var avgFitness, avgScore, avgAge float64
	best := 0
	for _, r := range results {
		avgFitness += r.FitnessMean
		avgScore += r.ScoreMean
		avgAge += r.AgeMean
		best = max(best, r.ScoreBest)
	}
	n := float64(len(results))

	l.log.Info("benchmark",
		"gen", gen,
		"networks", len(results),
		"episodes", results[0].NumEpisodes,
		"avg_fitness", fmt.Sprintf("%.1f", avgFitness/n),
		"avg_score", fmt.Sprintf("%.2f", avgScore/n),
		"avg_age", fmt.Sprintf("%.1f", avgAge/n),
		"best_score", best,
	)
}

// LogTopK logs debug info for the top k agents
func (l *Logger) LogTopK(gen int, agents []*ga.Agent, k int) {
	top := ga.TopK(agents, k)
	for i, a := range top {
		l.log.Debug("top agent",
			"gen", gen,
			"rank", humanize.Ordinal(i+1),
			"id", a.ID,
			"fitness", a.Fitness,
			"score", a.Stats.Score,
			"age", a.Stats.Age,
			"death", a.Stats.Death.String(),
		)
	}
}

// LogReplay records where a replay was written
func (l *Logger) LogReplay(gen int, path string, stats env.EpisodeStats) {
	l.log.Info("replay saved",
		"gen", gen,
		"path", path,
		"score", stats.Score,
		"age", stats.Age,
		"death", stats.Death.String(),
	)
}
