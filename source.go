package p4c

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// DefaultExtensions are the file extensions recognized as program
// descriptions.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// Source finds program descriptions by program name. The name of a
// description is its file name without extension.
type Source interface {
	// Find locates a description by program name.
	// Returns the content, source path for diagnostics, or fs.ErrNotExist if not found.
	Find(name string) (io.ReadCloser, string, error)

	// Programs returns the names of all descriptions known to this
	// source, sorted. Used by ConvertAll.
	Programs() ([]string, error)
}

// SourceOption configures a source.
type SourceOption func(*sourceConfig)

type sourceConfig struct {
	extensions []string
}

func defaultSourceConfig() sourceConfig {
	return sourceConfig{extensions: DefaultExtensions}
}

// WithExtensions sets the file extensions to recognize for this source.
func WithExtensions(exts ...string) SourceOption {
	return func(c *sourceConfig) {
		c.extensions = exts
	}
}

// --- Dir Source (single directory, lazy) ---

type dirSource struct {
	path   string
	config sourceConfig
}

// Dir creates a Source that searches a single directory (no recursion).
// Files are looked up lazily on each Find() call.
func Dir(path string, opts ...SourceOption) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &dirSource{path: path, config: cfg}, nil
}

func (s *dirSource) Find(name string) (io.ReadCloser, string, error) {
	for _, ext := range s.config.extensions {
		fullPath := filepath.Join(s.path, name+ext)
		f, err := os.Open(fullPath)
		if err == nil {
			return f, fullPath, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fullPath, err
		}
	}
	return nil, "", fs.ErrNotExist
}

func (s *dirSource) Programs() ([]string, error) {
	extSet := makeExtensionSet(s.config.extensions)
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !hasValidExtension(entry.Name(), extSet) {
			continue
		}
		names = append(names, programNameFromPath(entry.Name()))
	}
	return sortedUnique(names), nil
}

// --- DirTree Source (recursive directory, indexed) ---

type treeSource struct {
	index map[string]string // program name -> file path
}

// DirTree creates a Source that recursively indexes a directory tree.
// It walks the tree once at construction and builds a name->path index.
// First match wins for duplicate names.
func DirTree(root string, opts ...SourceOption) (Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "open", Path: root, Err: os.ErrInvalid}
	}
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	index, err := buildIndex(os.DirFS(root), cfg)
	if err != nil {
		return nil, err
	}
	for name, path := range index {
		index[name] = filepath.Join(root, filepath.FromSlash(path))
	}
	return &treeSource{index: index}, nil
}

func (s *treeSource) Find(name string) (io.ReadCloser, string, error) {
	path, ok := s.index[name]
	if !ok {
		return nil, "", fs.ErrNotExist
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

func (s *treeSource) Programs() ([]string, error) {
	return indexNames(s.index), nil
}

// --- FS Source (for embed.FS, testing, http filesystems) ---

type fsSource struct {
	name   string
	fsys   fs.FS
	config sourceConfig

	once  sync.Once
	index map[string]string
	err   error
}

// FS creates a Source backed by an fs.FS (e.g., embed.FS).
// The name is used for error messages and path reporting.
// It lazily indexes the filesystem on first use.
func FS(name string, fsys fs.FS, opts ...SourceOption) Source {
	cfg := defaultSourceConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &fsSource{name: name, fsys: fsys, config: cfg}
}

func (s *fsSource) load() error {
	s.once.Do(func() {
		s.index, s.err = buildIndex(s.fsys, s.config)
	})
	return s.err
}

func (s *fsSource) Find(name string) (io.ReadCloser, string, error) {
	if err := s.load(); err != nil {
		return nil, "", err
	}
	path, ok := s.index[name]
	if !ok {
		return nil, "", fs.ErrNotExist
	}
	f, err := s.fsys.Open(path)
	if err != nil {
		return nil, s.name + ":" + path, err
	}
	return f, s.name + ":" + path, nil
}

func (s *fsSource) Programs() ([]string, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return indexNames(s.index), nil
}

// --- Multi Source (combines multiple sources) ---

type multiSource struct {
	sources []Source
}

// Multi combines multiple sources into one.
// Find() tries each source in order, returning the first match.
func Multi(sources ...Source) Source {
	return &multiSource{sources: sources}
}

func (s *multiSource) Find(name string) (io.ReadCloser, string, error) {
	for _, src := range s.sources {
		r, path, err := src.Find(name)
		if err == nil {
			return r, path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, path, err
		}
	}
	return nil, "", fs.ErrNotExist
}

func (s *multiSource) Programs() ([]string, error) {
	var names []string
	for _, src := range s.sources {
		n, err := src.Programs()
		if err != nil {
			return nil, err
		}
		names = append(names, n...)
	}
	return sortedUnique(names), nil
}

// --- Helpers ---

func buildIndex(fsys fs.FS, cfg sourceConfig) (map[string]string, error) {
	extSet := makeExtensionSet(cfg.extensions)
	index := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasValidExtension(path, extSet) {
			return nil
		}
		name := programNameFromPath(path)
		if _, exists := index[name]; !exists {
			index[name] = path
		}
		return nil
	})
	return index, err
}

func indexNames(index map[string]string) []string {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}

func makeExtensionSet(extensions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}

func hasValidExtension(path string, extSet map[string]struct{}) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := extSet[ext]
	return ok
}

func programNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
