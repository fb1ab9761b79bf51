package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// DefaultGlob matches every supported source file format.
const DefaultGlob = "**/*.{json,yaml,yml,toml,gz}"

// Seeder imports source files found under a directory.
type Seeder struct {
	manager *Manager
	dir     string
	glob    string
	logger  *zap.Logger
}

// NewSeeder creates a seeder for dir. An empty glob means DefaultGlob.
func NewSeeder(manager *Manager, dir, glob string, logger *zap.Logger) *Seeder {
	if glob == "" {
		glob = DefaultGlob
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{manager: manager, dir: dir, glob: glob, logger: logger}
}

// Seed walks the directory and imports every matching file. Per-file
// failures are logged and counted; only walk and storage errors are
// returned.
func (s *Seeder) Seed(ctx context.Context) (*ImportResult, error) {
	total := &ImportResult{Errors: []ImportError{}}
	if s.dir == "" {
		return total, nil
	}
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		s.logger.Warn("Sources directory not found", zap.String("dir", s.dir))
		return total, nil
	}

	files, err := s.files(ctx)
	if err != nil {
		return total, err
	}
	s.logger.Info("Seeding sources", zap.String("dir", s.dir), zap.Int("files", len(files)))

	var failed int
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("Failed to read source file", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}
		items, err := ParseSources(data, path)
		if err != nil {
			s.logger.Warn("Failed to parse source file", zap.String("file", path), zap.Error(err))
			failed++
			continue
		}
		res, err := s.manager.Import(ctx, items)
		if err != nil {
			return total, err
		}
		for _, e := range res.Errors {
			s.logger.Warn("Rejected source",
				zap.String("file", path), zap.Int("index", e.Index), zap.String("reason", e.Reason))
		}
		total.Imported += res.Imported
		total.Duplicates += res.Duplicates
		total.Errors = append(total.Errors, res.Errors...)
	}

	s.logger.Info("Seeding complete",
		zap.Int("imported", total.Imported),
		zap.Int("rejected", len(total.Errors)),
		zap.Int("failedFiles", failed))
	return total, nil
}

// files returns matching paths in lexical order so later files win on
// duplicate keys deterministically.
func (s *Seeder) files(ctx context.Context) ([]string, error) {
	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.dir, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.dir, p)
		if err != nil {
			return nil
		}
		if ok, _ := doublestar.Match(s.glob, filepath.ToSlash(rel)); ok {
			mu.Lock()
			matches = append(matches, p)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
