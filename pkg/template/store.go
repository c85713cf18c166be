// Package template resolves named template variants to raw archive bytes.
// Two sources exist: a filesystem store with a YAML manifest and optional
// hot-reload, and an HTTP fetcher for hosted deployments that keep templates
// in blob storage. Both enforce the minimum-size sanity check: a truncated
// template must fail the export, never silently produce an empty document.
package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"
	"gopkg.in/yaml.v3"
)

// MinTemplateSize is the smallest plausible template archive. Anything
// smaller is treated as a truncated fetch.
const MinTemplateSize = 10 * 1024

// ErrTemplateFetch is the fatal error for unavailable or implausibly small
// templates.
var ErrTemplateFetch = errors.New("template fetch failed")

// Fetcher resolves a logical template name to raw archive bytes.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// manifest is the on-disk variant index of a template directory.
type manifest struct {
	Templates map[string]string `yaml:"templates"`
}

// Store is a filesystem-backed template source. Variants come from a
// templates.yaml manifest when present, otherwise every *.hwpx file in the
// directory registers under its base name.
type Store struct {
	dir    string
	logger *zap.Logger

	mu       sync.RWMutex
	variants map[string]string
	cache    map[string][]byte

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewStore creates a store over dir and loads the variant index. A nil
// logger disables logging.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := &Store{
		dir:    dir,
		logger: logger,
	}
	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Reload re-reads the variant index and drops cached template bytes.
func (s *Store) Reload() error {
	variants, err := loadVariants(s.dir)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.variants = variants
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	s.logger.Debug("template store reloaded",
		zap.String("dir", s.dir),
		zap.Int("variants", len(variants)))
	return nil
}

func loadVariants(dir string) (map[string]string, error) {
	manifestPath := filepath.Join(dir, "templates.yaml")
	if data, err := os.ReadFile(manifestPath); err == nil {
		var m manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing template manifest %s: %w", manifestPath, err)
		}
		if len(m.Templates) == 0 {
			return nil, fmt.Errorf("template manifest %s lists no templates", manifestPath)
		}
		return m.Templates, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory %s: %w", dir, err)
	}
	variants := make(map[string]string)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".hwpx") {
			continue
		}
		variants[strings.TrimSuffix(name, ".hwpx")] = name
	}
	return variants, nil
}

// Variants returns the registered variant names, sorted.
func (s *Store) Variants() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.variants))
	for name := range s.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fetch returns the archive bytes for a variant name. Bytes are cached
// until the next Reload.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	cached, hit := s.cache[name]
	file, known := s.variants[name]
	s.mu.RUnlock()

	if hit {
		return cached, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: unknown template %q", ErrTemplateFetch, name)
	}

	path := filepath.Join(s.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrTemplateFetch, path, err)
	}
	if len(data) < MinTemplateSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, below the %d byte minimum",
			ErrTemplateFetch, path, len(data), MinTemplateSize)
	}

	s.mu.Lock()
	s.cache[name] = data
	s.mu.Unlock()

	s.logger.Debug("template loaded",
		zap.String("template", name),
		zap.Int("bytes", len(data)))
	return data, nil
}

// Watch starts watching the store directory and reloads the variant index
// when template files or the manifest change.
func (s *Store) Watch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating template watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching template directory %s: %w", s.dir, err)
	}

	s.watcher = watcher
	s.stopChan = make(chan struct{})
	go s.watchLoop(watcher, s.stopChan)
	return nil
}

func (s *Store) watchLoop(watcher *fsnotify.Watcher, stop chan struct{}) {
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.Reload(); err != nil {
				s.logger.Warn("template reload failed",
					zap.String("event", event.String()),
					zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("template watcher error", zap.Error(err))

		case <-stop:
			return
		}
	}
}

// StopWatch stops the directory watcher.
func (s *Store) StopWatch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return
	}
	close(s.stopChan)
	s.watcher.Close()
	s.watcher = nil
	s.stopChan = nil
}
