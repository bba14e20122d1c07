package indexing

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/mapperlink/internal/config"
	"github.com/standardbeagle/mapperlink/internal/debug"
	"github.com/standardbeagle/mapperlink/pkg/pathutil"
)

// FileWatcher monitors the workspace and feeds create/change/delete events
// for candidate mapper files to its callbacks, batched by a debouncer.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	config    *config.Config
	finder    *WorkspaceFinder
	globs     []string
	debouncer *eventDebouncer
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once

	// Callbacks for handling file events, called with file:// URIs
	onFileChanged func(ctx context.Context, uri string)
	onFileCreated func(ctx context.Context, uri string)
	onFileRemoved func(ctx context.Context, uri string)

	// Watch mode statistics
	eventsProcessed int64
	errorCount      int64
	lastEventTime   time.Time
	statsMu         sync.RWMutex

	// Progress tracking callback
	onBatchStart func(count int)
	onBatchEnd   func(count int, duration time.Duration)
}

// FileEventType represents the type of file system event
type FileEventType int

const (
	FileEventCreate FileEventType = iota
	FileEventWrite
	FileEventRemove
	FileEventRename
)

func (t FileEventType) String() string {
	switch t {
	case FileEventCreate:
		return "created"
	case FileEventWrite:
		return "changed"
	case FileEventRemove:
		return "deleted"
	case FileEventRename:
		return "renamed"
	}
	return "unknown"
}

// NewFileWatcher creates a watcher for the mapper globs of cfg. The finder
// supplies the same exclude and .gitignore filtering the scan uses.
func NewFileWatcher(cfg *config.Config, finder *WorkspaceFinder) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if finder == nil {
		finder = NewWorkspaceFinder(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())

	fw := &FileWatcher{
		watcher:   watcher,
		config:    cfg,
		finder:    finder,
		globs:     cfg.AllGlobs(),
		debouncer: newEventDebouncer(time.Duration(cfg.Index.WatchDebounceMs) * time.Millisecond),
		ctx:       ctx,
		cancel:    cancel,
	}

	fw.debouncer.setCallbacks(fw)

	return fw, nil
}

// SetCallbacks sets the callbacks for handling file events
func (fw *FileWatcher) SetCallbacks(
	onFileChanged func(ctx context.Context, uri string),
	onFileCreated func(ctx context.Context, uri string),
	onFileRemoved func(ctx context.Context, uri string),
) {
	fw.onFileChanged = onFileChanged
	fw.onFileCreated = onFileCreated
	fw.onFileRemoved = onFileRemoved
}

// SetProgressCallbacks sets callbacks for batch processing progress
func (fw *FileWatcher) SetProgressCallbacks(
	onBatchStart func(count int),
	onBatchEnd func(count int, duration time.Duration),
) {
	fw.onBatchStart = onBatchStart
	fw.onBatchEnd = onBatchEnd
}

// Start begins watching root and every non-excluded directory below it
func (fw *FileWatcher) Start(root string) error {
	debug.LogWatch("Starting file watcher for directory: %s\n", root)

	if err := fw.addWatches(root); err != nil {
		return err
	}

	fw.wg.Add(1)
	go fw.processEvents()

	debug.LogWatch("File watcher started successfully\n")
	return nil
}

// Stop stops the file watcher. Pending debounced events are dropped and an
// in-flight batch is waited for.
func (fw *FileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		debug.LogWatch("Stopping file watcher\n")

		fw.cancel()
		fw.debouncer.stop()

		if closeErr := fw.watcher.Close(); closeErr != nil {
			log.Printf("WARNING: error closing fsnotify watcher: %v", closeErr)
			err = closeErr
		}

		fw.wg.Wait()
		fw.debouncer.wait()

		debug.LogWatch("File watcher stopped\n")
	})
	return err
}

// addWatches recursively adds watches to all relevant directories
func (fw *FileWatcher) addWatches(root string) error {
	// Track visited directories to prevent infinite loops from symlink cycles
	visitedDirs := make(map[string]bool)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return nil
		}
		if visitedDirs[realPath] {
			return filepath.SkipDir
		}
		visitedDirs[realPath] = true

		if path != root && fw.shouldIgnoreDirectory(path) {
			return filepath.SkipDir
		}

		if err := fw.watcher.Add(path); err != nil {
			log.Printf("WARNING: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (fw *FileWatcher) shouldIgnoreDirectory(path string) bool {
	rel, ok := fw.finder.RelativePath(path)
	if !ok {
		return true
	}
	return fw.finder.ShouldSkipDir(rel)
}

// shouldProcessPath reports whether path is a candidate mapper file
func (fw *FileWatcher) shouldProcessPath(path string) bool {
	rel, ok := fw.finder.RelativePath(path)
	if !ok {
		return false
	}
	return fw.finder.Matches(rel, fw.globs)
}

// processEvents processes file system events from fsnotify
func (fw *FileWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.incrementStats(0, 1)
			log.Printf("WARNING: file watcher error: %v", err)
		}
	}
}

// handleEvent handles a single file system event
func (fw *FileWatcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	debug.LogWatch("received event %v for path %s\n", event.Op, path)

	info, err := os.Stat(path)
	if err != nil {
		// Gone: a remove, or the old name of a rename
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && fw.shouldProcessPath(path) {
			fw.debouncer.addEvent(path, FileEventRemove)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			fw.handleNewDirectory(path)
		}
		return
	}

	if !fw.shouldProcessPath(path) {
		return
	}

	var eventType FileEventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = FileEventCreate
	case event.Op&fsnotify.Write != 0:
		eventType = FileEventWrite
	case event.Op&fsnotify.Rename != 0:
		eventType = FileEventRename
	default:
		return
	}

	fw.debouncer.addEvent(path, eventType)
}

// handleNewDirectory watches a directory created after Start and reports
// the candidate files already inside it, since their own create events
// fired before the watch existed.
func (fw *FileWatcher) handleNewDirectory(dir string) {
	if fw.shouldIgnoreDirectory(dir) {
		return
	}
	if err := fw.addWatches(dir); err != nil {
		log.Printf("WARNING: failed to watch new directory %s: %v", dir, err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != dir && fw.shouldIgnoreDirectory(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if fw.shouldProcessPath(path) {
			fw.debouncer.addEvent(path, FileEventCreate)
		}
		return nil
	})
}

// eventDebouncer batches file events to avoid excessive processing
type eventDebouncer struct {
	events    map[string]FileEventType
	mutex     sync.Mutex
	debounce  time.Duration
	timer     *time.Timer
	stopped   bool
	inFlight  sync.WaitGroup
	callbacks *FileWatcher
}

// newEventDebouncer creates a new event debouncer
func newEventDebouncer(debounce time.Duration) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]FileEventType),
		debounce: debounce,
	}
}

// setCallbacks sets the callbacks reference for the debouncer
func (d *eventDebouncer) setCallbacks(fw *FileWatcher) {
	d.callbacks = fw
}

// addEvent adds a file event to be debounced. The latest event per path wins.
func (d *eventDebouncer) addEvent(path string, eventType FileEventType) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}

	d.events[path] = eventType

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

// stop drops pending events and prevents further flushes
func (d *eventDebouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]FileEventType)
}

// wait blocks until a flush already running has returned
func (d *eventDebouncer) wait() {
	d.inFlight.Wait()
}

// flush processes all accumulated events: removals, then changes, then
// creations
func (d *eventDebouncer) flush() {
	d.mutex.Lock()
	if d.stopped {
		d.mutex.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]FileEventType)
	d.inFlight.Add(1)
	d.mutex.Unlock()
	defer d.inFlight.Done()

	if len(events) == 0 {
		return
	}

	fw := d.callbacks
	debug.LogWatch("processing %d debounced file events\n", len(events))

	if fw.onBatchStart != nil {
		fw.onBatchStart(len(events))
	}
	batchStart := time.Now()

	var creates, removes, changes []string
	for path, eventType := range events {
		switch eventType {
		case FileEventCreate:
			creates = append(creates, path)
		case FileEventRemove:
			removes = append(removes, path)
		case FileEventWrite, FileEventRename:
			changes = append(changes, path)
		}
	}
	sort.Strings(creates)
	sort.Strings(removes)
	sort.Strings(changes)

	dispatch := func(paths []string, cb func(ctx context.Context, uri string)) {
		if cb == nil {
			return
		}
		for _, path := range paths {
			cb(fw.ctx, pathutil.ToURI(path))
			fw.incrementStats(1, 0)
		}
	}

	dispatch(removes, fw.onFileRemoved)
	dispatch(changes, fw.onFileChanged)
	dispatch(creates, fw.onFileCreated)

	if fw.onBatchEnd != nil {
		fw.onBatchEnd(len(events), time.Since(batchStart))
	}
}

// incrementStats updates watch mode statistics
func (fw *FileWatcher) incrementStats(events int64, errors int64) {
	fw.statsMu.Lock()
	defer fw.statsMu.Unlock()

	fw.eventsProcessed += events
	fw.errorCount += errors
	fw.lastEventTime = time.Now()
}

// GetStats returns current watch mode statistics
func (fw *FileWatcher) GetStats() WatchStats {
	fw.statsMu.RLock()
	defer fw.statsMu.RUnlock()

	return WatchStats{
		EventsProcessed: fw.eventsProcessed,
		ErrorCount:      fw.errorCount,
		LastEventTime:   fw.lastEventTime,
		IsActive:        fw.ctx.Err() == nil,
	}
}

// WatchStats contains statistics about file watching operations
type WatchStats struct {
	EventsProcessed int64
	ErrorCount      int64
	LastEventTime   time.Time
	IsActive        bool
}
