package content

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quick-calculator/calcdir/internal/errors"
	"github.com/quick-calculator/calcdir/internal/logging"
	"github.com/quick-calculator/calcdir/internal/resolver"
)

// Options controls LoadDir.
type Options struct {
	// BaseLocale supplies category and component; defaults to "en".
	BaseLocale string
	// Aliases maps public slugs to filenames (slug -> filename).
	Aliases map[string]string
	Logger  logging.Logger
}

// Store is the immutable set of loaded calculator records.
type Store struct {
	dir      string
	records  map[string]*Record
	order    []string
	resolver *resolver.Resolver
}

// LoadDir reads every *.json document in dir. Any unreadable or malformed
// document aborts the load with an error naming the file.
func LoadDir(ctx context.Context, dir string, opts Options) (*Store, error) {
	if opts.BaseLocale == "" {
		opts.BaseLocale = DefaultBaseLocale
	}
	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	log = log.WithComponent("content")

	filenames, err := ListFilenames(dir)
	if err != nil {
		return nil, err
	}

	res, err := resolver.New(filenames, opts.Aliases)
	if err != nil {
		return nil, err
	}

	store := &Store{
		dir:      dir,
		records:  make(map[string]*Record, len(filenames)),
		order:    filenames,
		resolver: res,
	}

	for _, name := range filenames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, name+".json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.NewParseError(errors.ErrCodeReadFailed, "unreadable document", err).WithSubject(name)
		}

		record, err := ParseWithBase(name, data, opts.BaseLocale)
		if err != nil {
			return nil, err
		}
		if slug, ok := res.SlugFor(name); ok {
			record.Slug = slug
		}
		store.records[name] = record
	}

	log.Debug(ctx, "content loaded", "dir", dir, "documents", len(filenames), "aliases", len(opts.Aliases))

	return store, nil
}

// NewStore builds a store from already-parsed records. Record slugs are
// taken as given; the resolver is built from filenames and aliases.
func NewStore(records []*Record, aliases map[string]string) (*Store, error) {
	filenames := make([]string, 0, len(records))
	byname := make(map[string]*Record, len(records))
	for _, r := range records {
		filenames = append(filenames, r.Filename)
		byname[r.Filename] = r
	}
	sort.Strings(filenames)

	res, err := resolver.New(filenames, aliases)
	if err != nil {
		return nil, err
	}
	for name, r := range byname {
		if slug, ok := res.SlugFor(name); ok {
			r.Slug = slug
		}
	}

	return &Store{records: byname, order: filenames, resolver: res}, nil
}

// ListFilenames returns the extension-less names of the *.json documents in
// dir, sorted. Hidden files are ignored.
func ListFilenames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeReadFailed, "listing content directory", err).WithSubject(dir)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(names)

	return names, nil
}

// Load returns the record stored under filename.
func (s *Store) Load(filename string) (*Record, error) {
	if r, ok := s.records[filename]; ok {
		return r, nil
	}

	return nil, notFound(errors.ErrCodeFileNotFound, filename)
}

// Lookup resolves a public slug and returns its record.
func (s *Store) Lookup(slug string) (*Record, error) {
	filename, err := s.resolver.Resolve(slug)
	if err != nil {
		return nil, err
	}

	return s.Load(filename)
}

// Records returns every record sorted by filename.
func (s *Store) Records() []*Record {
	out := make([]*Record, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.records[name])
	}

	return out
}

// Filenames returns every document name, sorted.
func (s *Store) Filenames() []string {
	return append([]string(nil), s.order...)
}

// Slugs returns every public slug, sorted.
func (s *Store) Slugs() []string { return s.resolver.Slugs() }

// Resolver exposes the slug table built at load time.
func (s *Store) Resolver() *resolver.Resolver { return s.resolver }

// Dir is the directory the store was loaded from, empty for NewStore.
func (s *Store) Dir() string { return s.dir }

// Len returns the number of records.
func (s *Store) Len() int { return len(s.order) }
