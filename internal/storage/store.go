package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"redgreen/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
)

// Store persists settings and reports external changes to the settings
// file, so edits made outside the preferences window still reach the game
// as whole-config replacements.
type Store struct {
	configPath string
	watcher    *fsnotify.Watcher
	onChange   func(preferences.Settings)

	mu     sync.Mutex
	closed bool
}

// NewStore creates a store for the given app. onChange may be nil; when
// set it receives a freshly loaded snapshot whenever the settings file is
// rewritten on disk.
func NewStore(appName string, onChange func(preferences.Settings)) (*Store, error) {
	configPath, err := resolveConfigPath(appName)
	if err != nil {
		return nil, err
	}
	return newStoreAt(configPath, onChange)
}

func newStoreAt(configPath string, onChange func(preferences.Settings)) (*Store, error) {
	store := &Store{
		configPath: configPath,
		onChange:   onChange,
	}

	if onChange != nil {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("create settings watcher: %w", err)
		}
		// The directory is watched rather than the file: editors replace
		// files by rename, which drops a plain file watch.
		if err := ensureDir(filepath.Dir(configPath)); err != nil {
			watcher.Close()
			return nil, err
		}
		if err := watcher.Add(filepath.Dir(configPath)); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch settings dir: %w", err)
		}
		store.watcher = watcher
		go store.watch()
	}

	return store, nil
}

// Load reads the current settings snapshot.
func (store *Store) Load() (preferences.Settings, error) {
	return LoadSettingsFrom(store.configPath)
}

// Save persists the settings snapshot.
func (store *Store) Save(settings preferences.Settings) error {
	return SaveSettingsTo(store.configPath, settings)
}

// Close stops watching the settings file. Idempotent.
func (store *Store) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		return nil
	}
	store.closed = true
	if store.watcher != nil {
		return store.watcher.Close()
	}
	return nil
}

func (store *Store) watch() {
	for {
		select {
		case event, ok := <-store.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != store.configPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			settings, err := store.Load()
			if err != nil {
				log.Printf("reload settings: %v", err)
				continue
			}
			store.onChange(settings)
		case err, ok := <-store.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings watcher: %v", err)
		}
	}
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return nil
}
