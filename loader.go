package jsonenv

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Azhovan/jsonenv/envstore"
	"github.com/Azhovan/jsonenv/internal/normalize"
	"github.com/Azhovan/jsonenv/tree"
)

// FileSystem is the file access a Loader needs. OSFS reads the real file system;
// testing/fstest.MapFS satisfies it as well.
type FileSystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadDir(name string) ([]fs.DirEntry, error)
	ReadFile(name string) ([]byte, error)
}

// OSFS implements FileSystem using the os package.
type OSFS struct{}

// Stat returns file info for name.
func (OSFS) Stat(name string) (fs.FileInfo, error) { return os.Stat(name) }

// ReadDir lists name sorted by file name.
func (OSFS) ReadDir(name string) ([]fs.DirEntry, error) { return os.ReadDir(name) }

// ReadFile reads the entire file at name.
func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Loader loads a folder of configuration files into a Store.
// Load processes files one at a time; LoadConcurrent processes them all at once.
// Safe for concurrent use, but concurrent loads into the same Store race on shared keys.
type Loader struct {
	cfg    Config
	store  Store
	fsys   FileSystem
	logger *zap.Logger

	mu   sync.Mutex
	prov *Provenance
}

// NewLoader creates a Loader writing to the process environment through the real file system.
func NewLoader(cfg Config) *Loader {
	return &Loader{
		cfg:    cfg,
		store:  envstore.Process(),
		fsys:   OSFS{},
		logger: zap.NewNop(),
	}
}

// WithStore sets the Store entries are written to.
func (l *Loader) WithStore(store Store) *Loader {
	l.store = store
	return l
}

// WithFS sets the file system the folder is read from.
func (l *Loader) WithFS(fsys FileSystem) *Loader {
	l.fsys = fsys
	return l
}

// WithLogger sets the logger. A nil logger disables logging.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	l.logger = logger
	return l
}

// Provenance returns the entries written by the most recent load, or nil before the first one.
// Entries applied before a failure are included.
func (l *Loader) Provenance() *Provenance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prov
}

// run is the resolved state of a single load.
type run struct {
	cfg     Config
	formats []tree.Format
	files   []string
	rec     recorder
}

// Load processes the candidate files one at a time in directory order.
// The first fatal error stops the remaining files; entries already written stay written.
func (l *Loader) Load(ctx context.Context) error {
	r, err := l.prepare()
	if err != nil {
		return err
	}
	defer l.finish(r)

	for _, name := range r.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.loadFile(r, name); err != nil {
			return err
		}
	}

	return nil
}

// LoadConcurrent processes every candidate file in its own goroutine and waits for all
// of them. It returns the first error observed once every goroutine has finished.
// Writes of the same key from two files race: with Overwrite the last writer is not
// defined, with Throw which file reports the collision is not defined.
func (l *Loader) LoadConcurrent(ctx context.Context) error {
	r, err := l.prepare()
	if err != nil {
		return err
	}
	defer l.finish(r)

	var g errgroup.Group
	for _, name := range r.files {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return l.loadFile(r, name)
		})
	}

	return g.Wait()
}

// Start runs LoadConcurrent in the background. The returned channel receives its
// result (nil on success) and is then closed.
func (l *Loader) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- l.LoadConcurrent(ctx)
	}()
	return done
}

// Load loads cfg into the process environment, one file at a time.
func Load(ctx context.Context, cfg Config) error {
	return NewLoader(cfg).Load(ctx)
}

// LoadConcurrent loads cfg into the process environment, all files at once.
func LoadConcurrent(ctx context.Context, cfg Config) error {
	return NewLoader(cfg).LoadConcurrent(ctx)
}

// prepare resolves the configuration, checks the folder and lists candidate files.
func (l *Loader) prepare() (*run, error) {
	cfg, err := Resolve(l.cfg)
	if err != nil {
		return nil, err
	}

	info, err := l.fsys.Stat(cfg.Folder)
	if err != nil {
		return nil, &NotADirectoryError{Path: cfg.Folder, Err: err}
	}
	if !info.IsDir() {
		return nil, &NotADirectoryError{Path: cfg.Folder}
	}

	entries, err := l.fsys.ReadDir(cfg.Folder)
	if err != nil {
		return nil, fmt.Errorf("jsonenv: list %s: %w", cfg.Folder, err)
	}

	filter := cfg.folderFilter()
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			l.logger.Debug("skipping subdirectory", zap.String("name", name))
			continue
		}
		if !filter.Allows(name) {
			l.logger.Debug("file filtered out", zap.String("name", name))
			continue
		}
		files = append(files, name)
	}

	l.logger.Debug("loading folder",
		zap.String("folder", cfg.Folder),
		zap.Int("files", len(files)),
		zap.String("on_duplicate", string(cfg.OnDuplicateEntry)),
		zap.Bool("strict", cfg.Strict),
	)

	return &run{cfg: cfg, formats: cfg.formats(), files: files}, nil
}

func (l *Loader) finish(r *run) {
	prov := r.rec.provenance()

	l.mu.Lock()
	l.prov = prov
	l.mu.Unlock()
}

// loadFile reads, decodes and merges a single file.
// Errors, logs and provenance name the file as folder + "/" + name, with the folder as configured.
func (l *Loader) loadFile(r *run, name string) error {
	path := r.cfg.Folder + "/" + name
	format := tree.FormatFor(name, r.formats)

	node, err := l.readTree(filepath.Join(r.cfg.Folder, name), format)
	if err != nil {
		if r.cfg.Strict {
			return &InvalidJSONError{Path: path, Format: format, Err: err}
		}
		l.logger.Warn("ignoring file without a valid object",
			zap.String("file", path),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		node = nil
	}

	prefix := ""
	if r.cfg.UseFilePrefix.OrDefault(true) {
		prefix = normalize.FilePrefix(name)
	}

	writes := Flatten(node, prefix, r.cfg.entryFilter())
	applied, rejected, err := apply(l.store, writes, r.cfg.OnDuplicateEntry)
	r.rec.record(path, applied)
	for _, w := range rejected {
		l.logger.Warn("skipping entry the store rejected",
			zap.String("file", path),
			zap.String("key", w.Key),
			zap.Error(w.err),
		)
	}
	if err != nil {
		return err
	}

	if kept := len(writes) - len(applied) - len(rejected); kept > 0 {
		l.logger.Debug("kept existing values", zap.String("file", path), zap.Int("entries", kept))
	}
	l.logger.Debug("loaded file", zap.String("file", path), zap.Int("entries", len(applied)))

	return nil
}

func (l *Loader) readTree(path string, format tree.Format) (tree.Node, error) {
	data, err := l.fsys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return tree.Decode(format, data)
}
