package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the files a presentation directory owns, so an
// editor or server can reload the scene graph while the author edits.
type Watcher struct {
	// Events receives one signal per relevant change. Bursts are coalesced:
	// a pending signal absorbs further changes until drained.
	Events chan struct{}

	base *fsnotify.Watcher
	done chan struct{}
}

// Watch observes a presentation directory and its composite folders.
// Composite folders created after the watch starts are picked up when their
// parent directory reports the creation.
func Watch(presDir string) (*Watcher, error) {
	base, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(presDir)
	if err != nil {
		base.Close()
		return nil, err
	}
	if err := base.Add(absDir); err != nil {
		base.Close()
		return nil, err
	}
	addCompositeDirs(base, filepath.Join(absDir, "groups"))

	w := &Watcher{
		Events: make(chan struct{}, 1),
		base:   base,
		done:   make(chan struct{}),
	}
	go w.eventLoop()
	return w, nil
}

// Close stops the watcher. Events is closed afterwards.
func (w *Watcher) Close() error {
	close(w.done)
	return nil
}

func (w *Watcher) eventLoop() {
	defer w.base.Close()
	defer close(w.Events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.base.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.base.Add(ev.Name)
					continue
				}
			}
			if !ownedFile(ev.Name) {
				continue
			}
			select {
			case w.Events <- struct{}{}:
			default:
				// A reload signal is already pending.
			}
		case _, ok := <-w.base.Errors:
			if !ok {
				return
			}
		}
	}
}

// addCompositeDirs registers groups/ and every nested composite folder.
func addCompositeDirs(base *fsnotify.Watcher, dir string) {
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		return
	}
	_ = base.Add(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			addCompositeDirs(base, filepath.Join(dir, e.Name()))
		}
	}
}

func ownedFile(path string) bool {
	switch filepath.Base(path) {
	case "presentation.pr", "presentation.txt", "geometries.csv", "animations.csv",
		"defaults.json", "elements.txt", "elements.pr":
		return true
	}
	return strings.HasSuffix(path, ".csv")
}
