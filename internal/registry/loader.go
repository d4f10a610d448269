// Package registry finds model files on disk for in-process engines.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"routerd/internal/common/fsutil"
	"routerd/pkg/types"
)

const ggufExt = ".gguf"

// LoadDir scans a directory for *.gguf files. ID is the full filename,
// Name is the filename without extension and Path is absolute. Results are
// sorted by ID.
func LoadDir(dir string) ([]types.Model, error) {
	abs, err := fsutil.AbsDir(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.EqualFold(filepath.Ext(name), ggufExt) {
			continue
		}
		models = append(models, types.Model{
			ID:   name,
			Name: strings.TrimSuffix(name, filepath.Ext(name)),
			Path: filepath.Join(abs, name),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// Resolve finds the model named id. An id that is itself a path to an
// existing file is used directly; otherwise dir is scanned and id matches
// either the filename or the filename without extension (case-insensitive).
func Resolve(dir, id string) (types.Model, error) {
	if id == "" {
		return types.Model{}, fmt.Errorf("model id is empty")
	}
	if p, err := fsutil.ExpandHome(id); err == nil && fsutil.IsRegularFile(p) {
		abs, _ := filepath.Abs(p)
		base := filepath.Base(abs)
		return types.Model{ID: base, Name: strings.TrimSuffix(base, filepath.Ext(base)), Path: abs}, nil
	}
	if dir == "" {
		return types.Model{}, fmt.Errorf("model %q not found: no models_dir configured", id)
	}
	models, err := LoadDir(dir)
	if err != nil {
		return types.Model{}, err
	}
	for _, m := range models {
		if strings.EqualFold(m.ID, id) || strings.EqualFold(m.Name, id) {
			return m, nil
		}
	}
	return types.Model{}, fmt.Errorf("model %q not found in %s", id, dir)
}
