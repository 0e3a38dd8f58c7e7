package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ftserve/internal/common/fsutil"
	"ftserve/internal/engine"
	"ftserve/pkg/types"
)

// Scanner discovers models in a directory.
type Scanner interface {
	Scan(dir string) ([]types.Model, error)
}

// FastTextScanner finds *.bin and *.ftz files carrying a fastText header.
// Files with a model extension but a foreign header (e.g. word2vec .bin
// dumps) are skipped.
type FastTextScanner struct{}

// NewFastTextScanner returns the default scanner.
func NewFastTextScanner() FastTextScanner { return FastTextScanner{} }

var modelExts = map[string]bool{".bin": true, ".ftz": true}

// Scan lists models in dir sorted by ID. ID is the full filename (including
// extension); Path is the absolute file path.
func (FastTextScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
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
		ext := strings.ToLower(filepath.Ext(name))
		if !modelExts[ext] {
			continue
		}
		p := filepath.Join(abs, name)
		if !engine.CheckModelFile(p) {
			continue
		}
		var size int64
		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}
		models = append(models, types.Model{
			ID:        name,
			Name:      strings.TrimSuffix(name, filepath.Ext(name)),
			Path:      p,
			SizeBytes: size,
			Quantized: ext == ".ftz",
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// LoadDir scans dir with the default scanner.
func LoadDir(dir string) ([]types.Model, error) {
	return NewFastTextScanner().Scan(dir)
}

// Find returns the model with the given id.
func Find(models []types.Model, id string) (types.Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return types.Model{}, false
}
