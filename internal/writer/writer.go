// Package writer serializes a finished record set to the output directory.
package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/copextract/internal/record"
)

const (
	DetailsFile   = "details.json"
	StandardsFile = "standards.json"
	WarningsFile  = "warnings.json"
	SeedFile      = "seed_data.sql"
	ManifestFile  = "run.json"
)

// Writer writes output files into Dir. Every file is replaced atomically.
type Writer struct {
	Dir string
}

func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Writer{Dir: dir}, nil
}

// WriteSet writes the three JSON arrays and the seed script, returning the
// paths written.
func (w *Writer) WriteSet(set *record.Set) ([]string, error) {
	details := make([]record.Detail, len(set.Details))
	for i, d := range set.Details {
		d.Normalize()
		details[i] = d
	}
	standards := set.Standards
	if standards == nil {
		standards = []record.Standard{}
	}
	warnings := make([]record.Warning, len(set.Warnings))
	for i, wn := range set.Warnings {
		if wn.Condition == nil {
			wn.Condition = record.Attributes{}
		}
		warnings[i] = wn
	}

	var paths []string
	for _, f := range []struct {
		name string
		v    any
	}{
		{DetailsFile, details},
		{StandardsFile, standards},
		{WarningsFile, warnings},
	} {
		p, err := w.WriteJSON(f.name, f.v)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}

	seed, err := RenderSeed(set)
	if err != nil {
		return paths, fmt.Errorf("render seed: %w", err)
	}
	p := filepath.Join(w.Dir, SeedFile)
	if err := writeAtomic(p, []byte(seed)); err != nil {
		return paths, fmt.Errorf("write %s: %w", SeedFile, err)
	}
	return append(paths, p), nil
}

// WriteJSON writes v as 2-space indented JSON to name inside Dir.
func (w *Writer) WriteJSON(name string, v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("marshal %s: %w", name, err)
	}
	p := filepath.Join(w.Dir, name)
	if err := writeAtomic(p, buf.Bytes()); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return p, nil
}

func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	_ = os.Chmod(tmpPath, 0o644)
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
