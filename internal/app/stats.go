package app

import (
	"encoding/json"
	"os"

	"go.trai.ch/pack/internal/core/domain"
	"go.trai.ch/pack/internal/engine/cache"
	"go.trai.ch/zerr"
)

// Stats summarizes a build pass.
type Stats struct {
	Session     string              `json:"session"`
	Modules     int                 `json:"modules"`
	Edges       int                 `json:"edges"`
	Cycles      [][]domain.ModuleID `json:"cycles"`
	Unreachable []domain.ModuleID   `json:"unreachable"`
	Diagnostics []domain.Diagnostic `json:"diagnostics"`
	Errors      int                 `json:"errors"`
	Failed      bool                `json:"failed"`
	Emitted     bool                `json:"emitted"`
	Chunks      []ChunkStats        `json:"chunks"`
	Cache       cache.Stats         `json:"cache"`
}

// ChunkStats describes one chunk of a pass.
type ChunkStats struct {
	Name    string           `json:"name"`
	Kind    domain.ChunkKind `json:"kind"`
	File    string           `json:"file"`
	Size    int              `json:"size"`
	Modules int              `json:"modules"`
}

func newStats(
	sessionID string,
	graph *domain.ModuleGraph,
	an *domain.Analysis,
	report *domain.Report,
	chunks []domain.Chunk,
	cacheStats cache.Stats,
) *Stats {
	s := &Stats{
		Session:     sessionID,
		Modules:     graph.Len(),
		Edges:       graph.EdgeCount(),
		Cycles:      make([][]domain.ModuleID, 0, len(an.Cycles)),
		Unreachable: an.Unreachable,
		Diagnostics: report.Diagnostics,
		Errors:      len(report.Errors()),
		Failed:      report.Failed(),
		Chunks:      make([]ChunkStats, len(chunks)),
		Cache:       cacheStats,
	}
	if s.Unreachable == nil {
		s.Unreachable = []domain.ModuleID{}
	}
	if s.Diagnostics == nil {
		s.Diagnostics = []domain.Diagnostic{}
	}
	for _, i := range an.Cycles {
		s.Cycles = append(s.Cycles, an.Components[i])
	}
	for i, c := range chunks {
		s.Chunks[i] = ChunkStats{
			Name:    c.Name,
			Kind:    c.Kind,
			File:    c.FileName,
			Size:    len(c.Content),
			Modules: len(c.Modules),
		}
	}
	return s
}

// WriteFile writes the stats as indented JSON to path.
func (s *Stats) WriteFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStatsWriteFailed.Error()), "path", path)
	}
	if err := os.WriteFile(path, append(data, '\n'), domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStatsWriteFailed.Error()), "path", path)
	}
	return nil
}
