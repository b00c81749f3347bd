// Package storage persists run reports as a directory per run holding
// metadata.json and trajectory.csv.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/odekit/internal/config"
	"github.com/san-kum/odekit/internal/experiment"
	"github.com/san-kum/odekit/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Equation   string             `json:"equation"`
	Integrator string             `json:"integrator"`
	Precision  string             `json:"precision"`
	Controller string             `json:"controller,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Samples    int                `json:"samples"`
	Stats      sim.Stats          `json:"stats"`
	MaxError   *float64           `json:"max_error,omitempty"`
	Events     []experiment.Event `json:"events,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Elapsed    time.Duration      `json:"elapsed"`
	Config     config.Config      `json:"config"`
}

func metadataOf(id string, rep *experiment.Report, now time.Time) RunMetadata {
	meta := RunMetadata{
		ID:         id,
		Equation:   rep.Config.Equation,
		Integrator: rep.Config.Integrator,
		Precision:  rep.Config.Precision,
		Timestamp:  now,
		Dt:         rep.Config.Dt,
		Duration:   rep.Config.Duration,
		Samples:    len(rep.Times),
		Stats:      rep.Stats,
		MaxError:   rep.MaxError,
		Events:     rep.Events,
		Metrics:    finite(rep.Metrics),
		Elapsed:    rep.Elapsed,
		Config:     rep.Config,
	}
	if rep.Config.Adaptive != nil {
		meta.Controller = rep.Config.Adaptive.Controller
	}
	return meta
}

// finite drops values encoding/json cannot represent.
func finite(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// Save writes rep under a fresh run ID and sets rep.ID.
func (s *Store) Save(rep *experiment.Report) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := metadataOf(runID, rep, time.Now().UTC())
	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, trajectoryFile), func(w io.Writer) error {
		return WriteCSV(w, rep)
	}); err != nil {
		return "", err
	}

	rep.ID = runID
	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// List returns the stored runs, newest first. Unreadable entries are
// skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) runDir(runID string) (string, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return "", fmt.Errorf("%w: invalid run id %q", ErrRunNotFound, runID)
	}
	return filepath.Join(s.baseDir, runID), nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadTrajectory reads trajectory.csv. reference is nil when the run had
// no closed form.
func (s *Store) LoadTrajectory(runID string) (times []float64, states, reference [][]float64, err error) {
	dir, err := s.runDir(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	f, err := os.Open(filepath.Join(dir, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// LoadReport reassembles the report saved under runID.
func (s *Store) LoadReport(runID string) (*experiment.Report, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	times, states, ref, err := s.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	rep := &experiment.Report{
		ID:        meta.ID,
		Config:    meta.Config,
		Times:     times,
		States:    states,
		Reference: ref,
		MaxError:  meta.MaxError,
		Events:    meta.Events,
		Stats:     meta.Stats,
		Metrics:   meta.Metrics,
		Elapsed:   meta.Elapsed,
	}
	return rep, nil
}
