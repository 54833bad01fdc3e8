package input

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"redgreen/internal/core/monitor"

	"github.com/fsnotify/fsnotify"
)

// Watcher turns filesystem activity under a root directory into edit
// notifications for the violation monitor. It stands in for an editor's
// text-change feed: a file written during a red phase is an edit.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	onChange func(monitor.TextChange)

	mu     sync.Mutex
	closed bool
}

// New starts watching root and all of its subdirectories.
func New(root string, onChange func(monitor.TextChange)) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	watcher := &Watcher{
		root:     root,
		watcher:  fsWatcher,
		onChange: onChange,
	}

	if err := watcher.addRecursive(root); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. Idempotent.
func (watcher *Watcher) Close() error {
	watcher.mu.Lock()
	defer watcher.mu.Unlock()
	if watcher.closed {
		return nil
	}
	watcher.closed = true
	return watcher.watcher.Close()
}

func (watcher *Watcher) run() {
	for {
		select {
		case event, ok := <-watcher.watcher.Events:
			if !ok {
				return
			}
			watcher.handleEvent(event)
		case err, ok := <-watcher.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("file watcher: %v", err)
		}
	}
}

func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.addRecursive(event.Name); err != nil {
				log.Printf("watch new directory %s: %v", event.Name, err)
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) {
		return
	}

	change := monitor.TextChange{
		Source:      event.Name,
		Description: describe(event),
		Size:        fileSize(event.Name),
		Ephemeral:   IsEphemeral(event.Name),
		At:          time.Now(),
	}
	if watcher.onChange != nil {
		watcher.onChange(change)
	}
}

func (watcher *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			// Directories that vanish mid-walk are not worth failing over.
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// IsEphemeral reports whether the path looks like an editor scratch
// artifact (swap files, backups, atomic-save temporaries) rather than a
// document the user persists.
func IsEphemeral(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") {
		return true
	}
	switch filepath.Ext(base) {
	case ".swp", ".swx", ".swo", ".tmp", ".part":
		return true
	}
	// Vim probes write permission with a file literally named 4913.
	return base == "4913"
}

func describe(event fsnotify.Event) string {
	base := filepath.Base(event.Name)
	switch {
	case event.Has(fsnotify.Write):
		return fmt.Sprintf("wrote %s", base)
	case event.Has(fsnotify.Create):
		return fmt.Sprintf("created %s", base)
	case event.Has(fsnotify.Remove):
		return fmt.Sprintf("deleted %s", base)
	case event.Has(fsnotify.Rename):
		return fmt.Sprintf("renamed %s", base)
	default:
		return fmt.Sprintf("changed %s", base)
	}
}

func fileSize(path string) int {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return int(info.Size())
}
