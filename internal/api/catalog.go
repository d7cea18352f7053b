package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgallion1/copextract/internal/record"
	"github.com/dgallion1/copextract/internal/writer"
)

// Catalog is a read-only view of one output directory.
type Catalog struct {
	Details   []record.Detail
	Standards []record.Standard
	Warnings  []record.Warning
	Run       json.RawMessage

	byCode map[string]int
}

// LoadCatalog reads the record files written by a run. run.json is optional.
func LoadCatalog(dir string) (*Catalog, error) {
	c := &Catalog{}
	for _, f := range []struct {
		name string
		v    any
	}{
		{writer.DetailsFile, &c.Details},
		{writer.StandardsFile, &c.Standards},
		{writer.WarningsFile, &c.Warnings},
	} {
		raw, err := os.ReadFile(filepath.Join(dir, f.name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.name, err)
		}
		if err := json.Unmarshal(raw, f.v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, writer.ManifestFile))
	switch {
	case err == nil:
		if !json.Valid(raw) {
			return nil, fmt.Errorf("decode %s: invalid json", writer.ManifestFile)
		}
		c.Run = raw
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", writer.ManifestFile, err)
	}

	c.byCode = make(map[string]int, len(c.Details))
	for i, d := range c.Details {
		if _, ok := c.byCode[d.Code]; !ok {
			c.byCode[d.Code] = i
		}
	}
	return c, nil
}

// Detail looks up a detail by its code.
func (c *Catalog) Detail(code string) (record.Detail, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return record.Detail{}, false
	}
	return c.Details[i], true
}

// FilterDetails returns details in category, or all when category is empty.
func (c *Catalog) FilterDetails(category string) []record.Detail {
	out := make([]record.Detail, 0, len(c.Details))
	for _, d := range c.Details {
		if category == "" || d.Category == category {
			out = append(out, d)
		}
	}
	return out
}

// FilterWarnings returns warnings matching every non-empty filter.
func (c *Catalog) FilterWarnings(detailCode string, level record.Level) []record.Warning {
	out := make([]record.Warning, 0, len(c.Warnings))
	for _, w := range c.Warnings {
		if detailCode != "" && w.DetailCode != detailCode {
			continue
		}
		if level != "" && w.Level != level {
			continue
		}
		out = append(out, w)
	}
	return out
}
