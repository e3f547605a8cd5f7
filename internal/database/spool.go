package database

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const spoolVersion = 1

// SpoolArtifact is the on-disk form of a spool: every sample of a report
// in one gzip-compressed JSON document.
type SpoolArtifact struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Samples   []Sample  `json:"samples"`
}

// SpoolStore keeps samples in a single .json.gz file so they can be moved
// between machines without a database. The file is read once on open and
// rewritten atomically on every write.
type SpoolStore struct {
	path    string
	samples []Sample
}

func OpenSpool(path string) (*SpoolStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("spool path is required")
	}
	store := &SpoolStore{path: filepath.Clean(path)}

	artifact, err := ReadSpoolArtifact(store.path)
	if errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err != nil {
		return nil, err
	}
	store.samples = artifact.Samples
	return store, nil
}

func (s *SpoolStore) Close() error {
	return nil
}

func (s *SpoolStore) QuerySamples(ctx context.Context, metric string) ([]Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Sample
	for _, sample := range s.samples {
		if sample.Metric == metric {
			out = append(out, sample)
		}
	}
	return out, nil
}

// WriteSamples merges samples into the spool; a sample at an existing
// coordinate replaces the stored value.
func (s *SpoolStore) WriteSamples(ctx context.Context, samples []Sample) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	type coordinate struct {
		metric, strategy string
		held, varying    float64
	}
	index := make(map[coordinate]int, len(s.samples))
	merged := append([]Sample{}, s.samples...)
	for i, sample := range merged {
		index[coordinate{sample.Metric, sample.Strategy, sample.Held, sample.Varying}] = i
	}
	for _, sample := range samples {
		key := coordinate{sample.Metric, sample.Strategy, sample.Held, sample.Varying}
		if i, ok := index[key]; ok {
			merged[i] = sample
			continue
		}
		index[key] = len(merged)
		merged = append(merged, sample)
	}

	artifact := &SpoolArtifact{Version: spoolVersion, CreatedAt: time.Now().UTC(), Samples: merged}
	if err := WriteSpoolArtifact(s.path, artifact); err != nil {
		return fmt.Errorf("write spool: %w", err)
	}
	s.samples = merged
	return nil
}

// ReadSpoolArtifact decodes a spool file written by WriteSpoolArtifact.
func ReadSpoolArtifact(path string) (*SpoolArtifact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("read spool %s: %w", path, err)
	}
	defer gz.Close()

	var artifact SpoolArtifact
	if err := json.NewDecoder(gz).Decode(&artifact); err != nil {
		return nil, fmt.Errorf("decode spool %s: %w", path, err)
	}
	if artifact.Version != spoolVersion {
		return nil, fmt.Errorf("spool %s: unsupported version %d", path, artifact.Version)
	}
	return &artifact, nil
}

// WriteSpoolArtifact writes a gzip-compressed JSON artifact to path atomically.
func WriteSpoolArtifact(path string, artifact *SpoolArtifact) error {
	if artifact == nil {
		return fmt.Errorf("spool artifact is nil")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	ok := false
	defer func() {
		_ = tmp.Close()
		if !ok {
			_ = os.Remove(tmpPath)
		}
	}()

	gz := gzip.NewWriter(tmp)
	enc := json.NewEncoder(gz)
	enc.SetIndent("", "  ")
	if err := enc.Encode(artifact); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	ok = true
	return nil
}
