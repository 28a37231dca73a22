package p4c

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"sync"

	"github.com/kmateuszssak/p4c/internal/loader"
	"github.com/kmateuszssak/p4c/internal/types"
)

// ErrNoSources is returned when ConvertAll is called without a source.
var ErrNoSources = errors.New("no program sources")

// FileResult is the outcome of converting one description found by
// ConvertAll. Exactly one of Result and Err is set.
type FileResult struct {
	Name   string
	Path   string
	Result *Result
	Err    error
}

// ConvertAll converts every program description in src in parallel.
// Results are sorted by program name. A failing program does not stop
// the others; its error is carried in its FileResult. The returned error
// is non-nil only when the source cannot be listed or ctx is cancelled.
func ConvertAll(ctx context.Context, src Source, opts ...Option) ([]FileResult, error) {
	if src == nil {
		return nil, ErrNoSources
	}
	names, err := src.Programs()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}

	c := buildConfig(opts)
	logger := types.Logger{L: c.logger}
	if logger.Enabled(slog.LevelInfo) {
		logger.Log(slog.LevelInfo, "parallel conversion", slog.Int("programs", len(names)))
	}

	results := make(chan FileResult, len(names))
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.NumCPU())

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			results <- convertOne(src, name, c)
		}(name)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var out []FileResult
	for r := range results {
		out = append(out, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b FileResult) int {
		return cmp.Compare(a.Name, b.Name)
	})

	if logger.Enabled(slog.LevelInfo) {
		failed := 0
		for _, r := range out {
			if r.Err != nil {
				failed++
			}
		}
		logger.Log(slog.LevelInfo, "parallel conversion complete",
			slog.Int("programs", len(out)),
			slog.Int("failed", failed))
	}
	return out, nil
}

// convertOne loads and converts a single description. Each call builds
// its own loader since a CUE context must not be shared across goroutines.
func convertOne(src Source, name string, c convertConfig) FileResult {
	r := FileResult{Name: name}
	rc, path, err := src.Find(name)
	r.Path = path
	if err != nil {
		r.Err = fmt.Errorf("finding %s: %w", name, err)
		return r
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		r.Err = fmt.Errorf("reading %s: %w", path, err)
		return r
	}

	l, err := loader.New(types.Component(c.logger, "loader"))
	if err != nil {
		r.Err = err
		return r
	}
	prog, err := l.Load(data, path)
	if err != nil {
		r.Err = err
		return r
	}
	r.Result, r.Err = convertProgram(prog, c)
	if r.Err != nil {
		r.Result = nil
	}
	return r
}
