package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"image-studio/internal/errs"
)

// projectFileVersion is written into every project file.
const projectFileVersion = 1

// projectFile is the on-disk layout of the "json" driver: one file holding
// every project saved through it.
type projectFile struct {
	Version  int                `json:"version"`
	Created  time.Time          `json:"created"`
	Modified time.Time          `json:"modified"`
	Projects map[string]ByImage `json:"projects"`
}

// File stores projects in a single JSON document, rewritten on each save.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// OpenFile returns an adapter backed by the JSON file at path. The file
// and its directory are created on the first save.
func OpenFile(path string) *File {
	return &File{path: path, now: time.Now}
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

// read returns the current document, or a fresh one if the file does not
// exist yet.
func (f *File) read() (*projectFile, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		now := f.now().UTC()
		return &projectFile{Version: projectFileVersion, Created: now, Modified: now, Projects: map[string]ByImage{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var pf projectFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	if pf.Projects == nil {
		pf.Projects = map[string]ByImage{}
	}
	return &pf, nil
}

// Save replaces the project's entry and rewrites the file through a
// temporary file so a crash never leaves it half written.
func (f *File) Save(ctx context.Context, projectID string, adjustments ByImage) error {
	const op = "store.Save"
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	pf, err := f.read()
	if err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	if adjustments == nil {
		adjustments = ByImage{}
	}
	pf.Projects[projectID] = adjustments.Clone()
	pf.Version = projectFileVersion
	pf.Modified = f.now().UTC()

	data, err := json.MarshalIndent(pf, "", "  ")
	if err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errs.E(op, errs.KindPersistence, err)
	}
	return nil
}

// Load returns the project's adjustments, or nil if it was never saved.
func (f *File) Load(ctx context.Context, projectID string) (ByImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	pf, err := f.read()
	if err != nil {
		return nil, errs.E("store.Load", errs.KindPersistence, err)
	}
	return pf.Projects[projectID].Clone(), nil
}

func (f *File) Close() error { return nil }

var _ Adapter = (*File)(nil)
