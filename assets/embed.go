package assets

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed *
var assetsFS embed.FS

// FS returns the embedded assets. When dir is set, files on disk under dir
// shadow the embedded ones so clips can be swapped without a rebuild.
func FS(dir string) fs.FS {
	if dir == "" {
		return assetsFS
	}
	return overlayFS{layers: []fs.FS{os.DirFS(dir), assetsFS}}
}

// LoadFile loads an asset by assets-relative path.
func LoadFile(fsys fs.FS, name string) ([]byte, error) {
	return fs.ReadFile(fsys, cleanAssetPath(name))
}

// overlayFS reads from the first layer that has the file and merges
// directory listings across layers.
type overlayFS struct {
	layers []fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	var firstErr error
	for _, layer := range o.layers {
		f, err := layer.Open(name)
		if err == nil {
			return f, nil
		}
		if firstErr == nil || errors.Is(firstErr, fs.ErrNotExist) {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = fs.ErrNotExist
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: unwrapPathError(firstErr)}
}

func (o overlayFS) ReadDir(name string) ([]fs.DirEntry, error) {
	seen := make(map[string]struct{})
	var entries []fs.DirEntry
	found := false
	for _, layer := range o.layers {
		list, err := fs.ReadDir(layer, name)
		if err != nil {
			continue
		}
		found = true
		for _, e := range list {
			if _, ok := seen[e.Name()]; ok {
				continue
			}
			seen[e.Name()] = struct{}{}
			entries = append(entries, e)
		}
	}
	if !found {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func unwrapPathError(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

func cleanAssetPath(p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		s := filepath.ToSlash(p)
		if idx := strings.LastIndex(s, "/assets/"); idx >= 0 {
			return path.Clean(s[idx+len("/assets/"):])
		}
		return path.Base(s)
	}
	s := path.Clean(filepath.ToSlash(p))
	s = strings.TrimPrefix(s, "./")
	if after, ok := strings.CutPrefix(s, "assets/"); ok {
		s = after
	}
	return s
}
