package flatfile

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/mesh-intelligence/bazaar/pkg/types"
)

// ChangeOp describes what happened to a collection file.
type ChangeOp string

// Change operations.
const (
	ChangeWritten ChangeOp = "written"
	ChangeRemoved ChangeOp = "removed"
)

// Change is one observed modification of a collection file.
type Change struct {
	Collection string   `json:"collection"`
	Op         ChangeOp `json:"op"`
}

// Watcher reports changes to collection files in the data directory,
// whichever process makes them.
type Watcher struct {
	fw      *fsnotify.Watcher
	changes chan Change
	store   *Store
}

// Watch starts watching the data directory. The watch is registered when
// Watch returns; call Close to stop it.
func (s *Store) Watch() (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(s.cfg.DataDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", s.cfg.DataDir, err)
	}
	w := &Watcher{
		fw:      fw,
		changes: make(chan Change, 64),
		store:   s,
	}
	go w.run()
	return w, nil
}

// Changes returns the channel of observed changes. It is closed after Close.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			c, ok := toChange(ev)
			if !ok {
				continue
			}
			select {
			case w.changes <- c:
			default:
				w.store.logger.Warn("watch backlog full, change dropped", "collection", c.Collection)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.store.logger.Warn("watch error", "err", err)
		}
	}
}

// toChange maps a file event to a collection change. Temp files and other
// non-collection files are ignored.
func toChange(ev fsnotify.Event) (Change, bool) {
	name, ok := strings.CutSuffix(filepath.Base(ev.Name), types.FileExtension)
	if !ok || !collectionName.MatchString(name) {
		return Change{}, false
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return Change{Collection: name, Op: ChangeRemoved}, true
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return Change{Collection: name, Op: ChangeWritten}, true
	}
	return Change{}, false
}
