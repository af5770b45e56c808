package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DefaultPattern matches effect source files.
const DefaultPattern = "*.wgsl"

// FSSources reads every file in fsys matching pattern (see fs.Glob),
// sorted by path. Refs are the paths within fsys.
func FSSources(fsys fs.FS, pattern string) ([]Source, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	names, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("catalog: glob %q: %w", pattern, err)
	}
	sources := make([]Source, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", name, err)
		}
		sources = append(sources, Source{Ref: name, Text: string(data)})
	}
	return sources, nil
}

// DirSources reads the matching files of a directory. Refs are
// filesystem paths rooted at dir.
func DirSources(dir, pattern string) ([]Source, error) {
	sources, err := FSSources(os.DirFS(dir), pattern)
	if err != nil {
		return nil, err
	}
	for i := range sources {
		sources[i].Ref = filepath.Join(dir, filepath.FromSlash(sources[i].Ref))
	}
	return sources, nil
}

// matches reports whether a file name matches pattern's final element.
func matches(pattern, name string) bool {
	if pattern == "" {
		pattern = DefaultPattern
	}
	ok, err := path.Match(path.Base(pattern), filepath.Base(name))
	return err == nil && ok
}
