package indexing

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/standardbeagle/mapperlink/internal/config"
	"github.com/standardbeagle/mapperlink/internal/debug"
	mlerrors "github.com/standardbeagle/mapperlink/internal/errors"
	"github.com/standardbeagle/mapperlink/internal/metrics"
	"github.com/standardbeagle/mapperlink/internal/parser"
	"github.com/standardbeagle/mapperlink/internal/types"
)

// MapperIndex owns every parsed mapper document of a workspace and answers
// cross-reference lookups between XML statements and Java methods.
//
// Lock order: updateMu before mu. Readers only take mu.RLock.
type MapperIndex struct {
	config  *config.Config
	finder  FileFinder
	reader  ContentReader
	metrics *metrics.Metrics

	mu             sync.RWMutex
	xmlByNamespace map[string]*types.XMLMapperDocument
	xmlByURI       map[string]*types.XMLMapperDocument
	javaByFQN      map[string]*types.JavaMapperDocument
	javaByURI      map[string]*types.JavaMapperDocument
	state          types.IndexState
	epoch          uint64
	pending        map[string]FileEventType // change events seen while initializing
	watcher        *FileWatcher
	lastScan       scanSummary

	// serializes change handlers with each other and with scan commit
	updateMu sync.Mutex

	flight    singleflight.Group
	scanCount atomic.Int64
}

type scanSummary struct {
	duration time.Duration
	finished time.Time
	files    int
	failures int
	err      error
}

// IndexStats is a point-in-time summary of the index
type IndexStats struct {
	State            types.IndexState `json:"state" yaml:"state"`
	XMLDocuments     int              `json:"xml_documents" yaml:"xml_documents"`
	JavaDocuments    int              `json:"java_documents" yaml:"java_documents"`
	Statements       int              `json:"statements" yaml:"statements"`
	Methods          int              `json:"methods" yaml:"methods"`
	ScanCount        int64            `json:"scan_count" yaml:"scan_count"`
	LastScanDuration time.Duration    `json:"last_scan_duration" yaml:"last_scan_duration"`
	LastScanAt       time.Time        `json:"last_scan_at" yaml:"last_scan_at"`
	LastScanFiles    int              `json:"last_scan_files" yaml:"last_scan_files"`
	LastScanFailures int              `json:"last_scan_failures" yaml:"last_scan_failures"`
	Watching         bool             `json:"watching" yaml:"watching"`
}

// Option configures a MapperIndex
type Option func(*MapperIndex)

// WithFinder replaces the workspace walker
func WithFinder(f FileFinder) Option {
	return func(idx *MapperIndex) { idx.finder = f }
}

// WithReader replaces the disk reader
func WithReader(r ContentReader) Option {
	return func(idx *MapperIndex) { idx.reader = r }
}

// WithMetrics records index activity on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(idx *MapperIndex) { idx.metrics = m }
}

// NewMapperIndex creates an uninitialized index for cfg. Nothing is read
// until EnsureInitialized.
func NewMapperIndex(cfg *config.Config, opts ...Option) *MapperIndex {
	idx := &MapperIndex{
		config:         cfg,
		xmlByNamespace: make(map[string]*types.XMLMapperDocument),
		xmlByURI:       make(map[string]*types.XMLMapperDocument),
		javaByFQN:      make(map[string]*types.JavaMapperDocument),
		javaByURI:      make(map[string]*types.JavaMapperDocument),
	}
	for _, opt := range opts {
		opt(idx)
	}
	if idx.finder == nil {
		idx.finder = NewWorkspaceFinder(cfg)
	}
	if idx.reader == nil {
		idx.reader = NewFileReader(cfg.Index.MaxFileSize)
	}
	return idx
}

// State returns the lifecycle state
func (idx *MapperIndex) State() types.IndexState {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.state
}

// IsReady reports whether a scan has completed and not been disposed
func (idx *MapperIndex) IsReady() bool {
	return idx.State() == types.StateReady
}

// ScanCount returns the number of full scans started
func (idx *MapperIndex) ScanCount() int64 {
	return idx.scanCount.Load()
}

// EnsureInitialized scans the workspace once. Concurrent callers share one
// scan and observe its result. Cancelling ctx stops this caller's wait but
// not the shared scan.
func (idx *MapperIndex) EnsureInitialized(ctx context.Context) error {
	idx.mu.RLock()
	state, epoch := idx.state, idx.epoch
	idx.mu.RUnlock()
	if state == types.StateReady {
		return nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := idx.flight.DoChan(fmt.Sprintf("init:%d", epoch), func() (interface{}, error) {
		return nil, idx.initialize(flightCtx, epoch)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (idx *MapperIndex) initialize(ctx context.Context, epoch uint64) error {
	idx.mu.Lock()
	if idx.epoch != epoch {
		idx.mu.Unlock()
		return mlerrors.ErrIndexDisposed
	}
	if idx.state == types.StateReady {
		idx.mu.Unlock()
		return nil
	}
	idx.state = types.StateInitializing
	idx.pending = make(map[string]FileEventType)
	idx.mu.Unlock()
	idx.metrics.SetState(types.StateInitializing)

	idx.scanCount.Add(1)
	start := time.Now()
	debug.LogIndexing("scan %d starting in %s\n", idx.scanCount.Load(), idx.config.Project.Root)

	result, err := idx.scan(ctx)
	elapsed := time.Since(start)

	if err != nil {
		idx.mu.Lock()
		if idx.epoch == epoch {
			idx.state = types.StateUninitialized
			idx.pending = nil
			idx.lastScan = scanSummary{duration: elapsed, finished: time.Now(), err: err}
		}
		idx.mu.Unlock()
		idx.metrics.ObserveScan("error", elapsed)
		idx.metrics.SetState(types.StateUninitialized)
		log.Printf("WARNING: mapper scan failed: %v", err)
		return mlerrors.NewIndexingError("scan", err).WithRecoverable(true)
	}

	idx.updateMu.Lock()
	idx.mu.Lock()
	if idx.epoch != epoch {
		idx.mu.Unlock()
		idx.updateMu.Unlock()
		idx.metrics.ObserveScan("disposed", elapsed)
		debug.LogIndexing("scan finished after dispose, results discarded\n")
		return mlerrors.ErrIndexDisposed
	}

	idx.xmlByNamespace = make(map[string]*types.XMLMapperDocument, len(result.xml))
	idx.xmlByURI = make(map[string]*types.XMLMapperDocument, len(result.xml))
	idx.javaByFQN = make(map[string]*types.JavaMapperDocument, len(result.java))
	idx.javaByURI = make(map[string]*types.JavaMapperDocument, len(result.java))
	for _, doc := range result.xml {
		idx.insertXMLLocked(doc)
	}
	for _, doc := range result.java {
		idx.insertJavaLocked(doc)
	}
	idx.state = types.StateReady
	pending := idx.pending
	idx.pending = nil
	idx.lastScan = scanSummary{
		duration: elapsed,
		finished: time.Now(),
		files:    result.files,
		failures: len(result.failures.Errors),
		err:      result.failures.ErrorOrNil(),
	}
	xmlCount, javaCount := len(idx.xmlByURI), len(idx.javaByURI)
	idx.mu.Unlock()
	idx.updateMu.Unlock()

	idx.metrics.ObserveScan("ok", elapsed)
	idx.metrics.SetDocuments(xmlCount, javaCount)
	idx.metrics.SetState(types.StateReady)
	debug.LogIndexing("scan done in %v: %d files, %d xml mappers, %d java mappers, %d failures\n",
		elapsed, result.files, xmlCount, javaCount, len(result.failures.Errors))
	if n := len(result.failures.Errors); n > 0 {
		log.Printf("WARNING: %d mapper files could not be read", n)
	}

	idx.replay(ctx, pending)

	if idx.config.Index.WatchMode {
		idx.startWatcher(epoch)
	}
	return nil
}

type scanResult struct {
	xml      []*types.XMLMapperDocument
	java     []*types.JavaMapperDocument
	files    int
	failures *mlerrors.MultiError
}

// scan enumerates and parses every candidate file. Only enumeration errors
// fail the scan; unreadable files are collected and skipped.
func (idx *MapperIndex) scan(ctx context.Context) (*scanResult, error) {
	uris, err := idx.candidates(ctx)
	if err != nil {
		return nil, err
	}

	type parsed struct {
		xml  *types.XMLMapperDocument
		java *types.JavaMapperDocument
		err  error
	}
	results := make([]parsed, len(uris))

	g, gctx := errgroup.WithContext(ctx)
	limit := idx.config.Index.MaxParallelFiles
	if limit <= 0 {
		limit = types.DefaultMaxParallelFiles
	}
	g.SetLimit(limit)

	for i, uri := range uris {
		g.Go(func() error {
			xmlDoc, javaDoc, err := idx.load(gctx, uri)
			results[i] = parsed{xml: xmlDoc, java: javaDoc, err: err}
			return nil
		})
	}
	_ = g.Wait()

	out := &scanResult{files: len(uris)}
	var failures []error
	for i, r := range results {
		switch {
		case r.err != nil:
			debug.LogIndexing("skipping %s: %v\n", uris[i], r.err)
			failures = append(failures, r.err)
		case r.xml != nil:
			out.xml = append(out.xml, r.xml)
		case r.java != nil:
			out.java = append(out.java, r.java)
		}
	}
	out.failures = mlerrors.NewMultiError(failures)
	return out, nil
}

// candidates returns the deduplicated, sorted union of XML and Java matches
func (idx *MapperIndex) candidates(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var uris []string
	for _, globs := range [][]string{idx.config.Mappers.XMLGlobs, idx.config.Mappers.JavaGlobs} {
		if len(globs) == 0 {
			continue
		}
		found, err := idx.finder.FindFiles(ctx, globs)
		if err != nil {
			return nil, fmt.Errorf("find files %v: %w", globs, err)
		}
		for _, uri := range found {
			if _, dup := seen[uri]; dup {
				continue
			}
			seen[uri] = struct{}{}
			uris = append(uris, uri)
		}
	}
	sort.Strings(uris)
	return uris, nil
}

type documentKind int

const (
	kindUnknown documentKind = iota
	kindXML
	kindJava
)

func kindOf(uri string) documentKind {
	switch strings.ToLower(path.Ext(uri)) {
	case ".xml":
		return kindXML
	case ".java":
		return kindJava
	}
	return kindUnknown
}

func (k documentKind) label() string {
	if k == kindJava {
		return metrics.KindJava
	}
	return metrics.KindXML
}

// load reads and parses one file. Both documents are nil for a file that is
// not a mapper.
func (idx *MapperIndex) load(ctx context.Context, uri string) (*types.XMLMapperDocument, *types.JavaMapperDocument, error) {
	kind := kindOf(uri)
	if kind == kindUnknown {
		return nil, nil, nil
	}

	text, err := idx.reader.ReadText(ctx, uri)
	if err != nil {
		idx.metrics.FileParsed(kind.label(), metrics.ResultError)
		return nil, nil, err
	}
	hash := xxhash.Sum64String(text)

	switch kind {
	case kindXML:
		if doc := parser.ParseXMLMapper(uri, text); doc != nil {
			doc.ContentHash = hash
			idx.metrics.FileParsed(metrics.KindXML, metrics.ResultOK)
			return doc, nil, nil
		}
	case kindJava:
		if doc := parser.ParseJavaMapper(uri, text); doc != nil {
			doc.ContentHash = hash
			idx.metrics.FileParsed(metrics.KindJava, metrics.ResultOK)
			return nil, doc, nil
		}
	}
	idx.metrics.FileParsed(kind.label(), metrics.ResultSkipped)
	debug.LogParse("%s is not a %s mapper\n", uri, kind.label())
	return nil, nil, nil
}

// insertXMLLocked indexes doc. The newest document owns a namespace that
// several files declare.
func (idx *MapperIndex) insertXMLLocked(doc *types.XMLMapperDocument) {
	idx.xmlByURI[doc.URI] = doc
	idx.xmlByNamespace[doc.Namespace] = doc
}

func (idx *MapperIndex) insertJavaLocked(doc *types.JavaMapperDocument) {
	idx.javaByURI[doc.URI] = doc
	idx.javaByFQN[doc.FullyQualifiedName] = doc
}

// removeURILocked drops every document of uri. A namespace or FQN owned by
// the removed document falls back to another file declaring the same name.
func (idx *MapperIndex) removeURILocked(uri string) bool {
	removed := false
	if doc, ok := idx.xmlByURI[uri]; ok {
		delete(idx.xmlByURI, uri)
		if idx.xmlByNamespace[doc.Namespace] == doc {
			delete(idx.xmlByNamespace, doc.Namespace)
			var next *types.XMLMapperDocument
			for _, other := range idx.xmlByURI {
				if other.Namespace == doc.Namespace && (next == nil || other.URI > next.URI) {
					next = other
				}
			}
			if next != nil {
				idx.xmlByNamespace[doc.Namespace] = next
			}
		}
		removed = true
	}
	if doc, ok := idx.javaByURI[uri]; ok {
		delete(idx.javaByURI, uri)
		if idx.javaByFQN[doc.FullyQualifiedName] == doc {
			delete(idx.javaByFQN, doc.FullyQualifiedName)
			var next *types.JavaMapperDocument
			for _, other := range idx.javaByURI {
				if other.FullyQualifiedName == doc.FullyQualifiedName && (next == nil || other.URI > next.URI) {
					next = other
				}
			}
			if next != nil {
				idx.javaByFQN[doc.FullyQualifiedName] = next
			}
		}
		removed = true
	}
	return removed
}

// OnFileChanged re-parses uri and replaces its document wholesale
func (idx *MapperIndex) OnFileChanged(ctx context.Context, uri string) error {
	return idx.applyEvent(ctx, uri, FileEventWrite)
}

// OnFileCreated parses uri and indexes it when it is a mapper
func (idx *MapperIndex) OnFileCreated(ctx context.Context, uri string) error {
	return idx.applyEvent(ctx, uri, FileEventCreate)
}

// OnFileDeleted removes every document of uri
func (idx *MapperIndex) OnFileDeleted(uri string) {
	_ = idx.applyEvent(context.Background(), uri, FileEventRemove)
}

// applyEvent runs one change event. Events before the first scan are
// dropped; events during the scan are replayed once it commits.
func (idx *MapperIndex) applyEvent(ctx context.Context, uri string, ev FileEventType) error {
	idx.updateMu.Lock()
	defer idx.updateMu.Unlock()

	idx.mu.Lock()
	switch idx.state {
	case types.StateUninitialized:
		idx.mu.Unlock()
		idx.metrics.ChangeEvent(ev.String(), "dropped")
		return nil
	case types.StateInitializing:
		idx.pending[uri] = ev
		idx.mu.Unlock()
		idx.metrics.ChangeEvent(ev.String(), "queued")
		return nil
	}

	if ev == FileEventRemove {
		removed := idx.removeURILocked(uri)
		xmlCount, javaCount := len(idx.xmlByURI), len(idx.javaByURI)
		idx.mu.Unlock()
		idx.metrics.SetDocuments(xmlCount, javaCount)
		idx.metrics.ChangeEvent(ev.String(), "applied")
		debug.LogIndexing("%s %s (removed=%v)\n", ev, uri, removed)
		return nil
	}

	var oldHash uint64
	var known bool
	if doc, ok := idx.xmlByURI[uri]; ok {
		oldHash, known = doc.ContentHash, true
	} else if doc, ok := idx.javaByURI[uri]; ok {
		oldHash, known = doc.ContentHash, true
	}
	idx.mu.Unlock()

	// Parse outside the write lock; updateMu keeps other handlers out
	text, readErr := idx.reader.ReadText(ctx, uri)
	if readErr == nil && known && xxhash.Sum64String(text) == oldHash {
		idx.metrics.ChangeEvent(ev.String(), "unchanged")
		return nil
	}

	var xmlDoc *types.XMLMapperDocument
	var javaDoc *types.JavaMapperDocument
	if readErr == nil {
		hash := xxhash.Sum64String(text)
		switch kindOf(uri) {
		case kindXML:
			if xmlDoc = parser.ParseXMLMapper(uri, text); xmlDoc != nil {
				xmlDoc.ContentHash = hash
			}
		case kindJava:
			if javaDoc = parser.ParseJavaMapper(uri, text); javaDoc != nil {
				javaDoc.ContentHash = hash
			}
		}
	}

	idx.mu.Lock()
	idx.removeURILocked(uri)
	if xmlDoc != nil {
		idx.insertXMLLocked(xmlDoc)
	}
	if javaDoc != nil {
		idx.insertJavaLocked(javaDoc)
	}
	xmlCount, javaCount := len(idx.xmlByURI), len(idx.javaByURI)
	idx.mu.Unlock()
	idx.metrics.SetDocuments(xmlCount, javaCount)

	if readErr != nil {
		idx.metrics.ChangeEvent(ev.String(), "error")
		debug.LogIndexing("%s %s: read failed, document dropped: %v\n", ev, uri, readErr)
		return readErr
	}
	idx.metrics.ChangeEvent(ev.String(), "applied")
	debug.LogIndexing("%s %s (xml=%v java=%v)\n", ev, uri, xmlDoc != nil, javaDoc != nil)
	return nil
}

// replay applies change events queued during the scan. Files are read
// fresh, so a queued create of a since-deleted file just removes it.
func (idx *MapperIndex) replay(ctx context.Context, pending map[string]FileEventType) {
	uris := make([]string, 0, len(pending))
	for uri := range pending {
		uris = append(uris, uri)
	}
	sort.Strings(uris)

	for _, uri := range uris {
		err := idx.applyEvent(ctx, uri, pending[uri])
		var fileErr *mlerrors.FileError
		if err != nil && !(stderrors.As(err, &fileErr) && fileErr.Type == mlerrors.ErrorTypeFileNotFound) {
			log.Printf("WARNING: replaying %s for %s: %v", pending[uri], uri, err)
		}
	}
}

func (idx *MapperIndex) startWatcher(epoch uint64) {
	var finder *WorkspaceFinder
	if wf, ok := idx.finder.(*WorkspaceFinder); ok {
		finder = wf
	}
	fw, err := NewFileWatcher(idx.config, finder)
	if err != nil {
		log.Printf("WARNING: %v", mlerrors.NewWatchError("create", err))
		return
	}
	report := func(op string, fn func(ctx context.Context, uri string) error) func(context.Context, string) {
		return func(ctx context.Context, uri string) {
			if err := fn(ctx, uri); err != nil {
				debug.LogWatch("%s %s: %v\n", op, uri, err)
			}
		}
	}
	fw.SetCallbacks(
		report("change", idx.OnFileChanged),
		report("create", idx.OnFileCreated),
		func(_ context.Context, uri string) { idx.OnFileDeleted(uri) },
	)
	if err := fw.Start(idx.config.Project.Root); err != nil {
		log.Printf("WARNING: %v", mlerrors.NewWatchError("start", err).WithURI(idx.config.Project.Root))
		_ = fw.Stop()
		return
	}

	idx.mu.Lock()
	if idx.epoch != epoch || idx.watcher != nil {
		idx.mu.Unlock()
		_ = fw.Stop()
		return
	}
	idx.watcher = fw
	idx.mu.Unlock()
}

// Dispose stops the watcher, drops every document and returns the index to
// uninitialized. A scan still running discards its results. The index can
// be initialized again afterwards.
func (idx *MapperIndex) Dispose() error {
	idx.mu.Lock()
	fw := idx.watcher
	idx.watcher = nil
	idx.epoch++
	idx.state = types.StateUninitialized
	idx.pending = nil
	idx.xmlByNamespace = make(map[string]*types.XMLMapperDocument)
	idx.xmlByURI = make(map[string]*types.XMLMapperDocument)
	idx.javaByFQN = make(map[string]*types.JavaMapperDocument)
	idx.javaByURI = make(map[string]*types.JavaMapperDocument)
	idx.mu.Unlock()

	idx.metrics.SetState(types.StateUninitialized)
	idx.metrics.SetDocuments(0, 0)

	if fw != nil {
		return fw.Stop()
	}
	return nil
}

// FindStatement resolves a namespace and statement id to its declaration
func (idx *MapperIndex) FindStatement(namespace, id string) (types.Location, bool) {
	idx.mu.RLock()
	ready := idx.state == types.StateReady
	doc := idx.xmlByNamespace[namespace]
	var st types.StatementRecord
	var ok bool
	if doc != nil {
		st, ok = doc.StatementByID[id]
	}
	idx.mu.RUnlock()

	switch {
	case !ready:
		idx.metrics.Lookup("statement", metrics.ResultNotReady)
		return types.Location{}, false
	case !ok:
		idx.metrics.Lookup("statement", metrics.ResultMiss)
		return types.Location{}, false
	}
	idx.metrics.Lookup("statement", metrics.ResultHit)
	return types.Location{URI: doc.URI, Position: st.Position}, true
}

// FindMethod resolves a mapper FQN and method name to its declaration.
// Overloads resolve to the first declaration.
func (idx *MapperIndex) FindMethod(fqn, name string) (types.Location, bool) {
	idx.mu.RLock()
	ready := idx.state == types.StateReady
	doc := idx.javaByFQN[fqn]
	var m types.MethodRecord
	var ok bool
	if doc != nil {
		m, ok = doc.MethodByName[name]
	}
	idx.mu.RUnlock()

	switch {
	case !ready:
		idx.metrics.Lookup("method", metrics.ResultNotReady)
		return types.Location{}, false
	case !ok:
		idx.metrics.Lookup("method", metrics.ResultMiss)
		return types.Location{}, false
	}
	idx.metrics.Lookup("method", metrics.ResultHit)
	return types.Location{URI: doc.URI, Position: m.Position}, true
}

// GetKnownMapperFQNs returns a snapshot of the indexed Java mapper names
func (idx *MapperIndex) GetKnownMapperFQNs() map[string]struct{} {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make(map[string]struct{}, len(idx.javaByFQN))
	for fqn := range idx.javaByFQN {
		out[fqn] = struct{}{}
	}
	return out
}

// XMLMapperByNamespace returns a copy of the document owning namespace
func (idx *MapperIndex) XMLMapperByNamespace(namespace string) (*types.XMLMapperDocument, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.xmlByNamespace[namespace]
	return doc.Clone(), ok
}

// XMLMapperByURI returns a copy of the XML document parsed from uri
func (idx *MapperIndex) XMLMapperByURI(uri string) (*types.XMLMapperDocument, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.xmlByURI[uri]
	return doc.Clone(), ok
}

// JavaMapperByFQN returns a copy of the Java document owning fqn
func (idx *MapperIndex) JavaMapperByFQN(fqn string) (*types.JavaMapperDocument, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.javaByFQN[fqn]
	return doc.Clone(), ok
}

// JavaMapperByURI returns a copy of the Java document parsed from uri
func (idx *MapperIndex) JavaMapperByURI(uri string) (*types.JavaMapperDocument, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	doc, ok := idx.javaByURI[uri]
	return doc.Clone(), ok
}

// documents returns copies of every indexed document, sorted by URI
func (idx *MapperIndex) documents() ([]*types.XMLMapperDocument, []*types.JavaMapperDocument) {
	idx.mu.RLock()
	xmlDocs := make([]*types.XMLMapperDocument, 0, len(idx.xmlByURI))
	for _, doc := range idx.xmlByURI {
		xmlDocs = append(xmlDocs, doc.Clone())
	}
	javaDocs := make([]*types.JavaMapperDocument, 0, len(idx.javaByURI))
	for _, doc := range idx.javaByURI {
		javaDocs = append(javaDocs, doc.Clone())
	}
	idx.mu.RUnlock()

	sort.Slice(xmlDocs, func(i, j int) bool { return xmlDocs[i].URI < xmlDocs[j].URI })
	sort.Slice(javaDocs, func(i, j int) bool { return javaDocs[i].URI < javaDocs[j].URI })
	return xmlDocs, javaDocs
}

// Stats returns document counts and scan bookkeeping
func (idx *MapperIndex) Stats() IndexStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := IndexStats{
		State:            idx.state,
		XMLDocuments:     len(idx.xmlByURI),
		JavaDocuments:    len(idx.javaByURI),
		ScanCount:        idx.scanCount.Load(),
		LastScanDuration: idx.lastScan.duration,
		LastScanAt:       idx.lastScan.finished,
		LastScanFiles:    idx.lastScan.files,
		LastScanFailures: idx.lastScan.failures,
		Watching:         idx.watcher != nil,
	}
	for _, doc := range idx.xmlByURI {
		stats.Statements += len(doc.Statements)
	}
	for _, doc := range idx.javaByURI {
		stats.Methods += len(doc.Methods)
	}
	return stats
}

// LastScanError returns the per-file failures of the last scan, or the
// enumeration error of a failed one
func (idx *MapperIndex) LastScanError() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.lastScan.err
}
