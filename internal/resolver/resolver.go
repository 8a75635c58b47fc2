// Package resolver maps public calculator slugs to content filenames.
//
// A filename is its own slug unless an alias targets it, in which case the
// file is reachable only through the alias. The table is built once and
// rejects any ambiguity up front, so Resolve is a plain lookup.
package resolver

import (
	"fmt"
	"sort"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// Resolver is an immutable slug -> filename table.
type Resolver struct {
	byslug map[string]string
	byfile map[string]string
	slugs  []string
}

// New builds the table from the known filenames (without extension) and the
// alias table (slug -> filename).
func New(filenames []string, aliases map[string]string) (*Resolver, error) {
	files := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		if _, dup := files[f]; dup {
			return nil, errors.NewAliasCollisionError(errors.ErrCodeAliasCollision,
				fmt.Sprintf("filename %q listed twice", f)).WithSubject(f)
		}
		files[f] = struct{}{}
	}

	r := &Resolver{
		byslug: make(map[string]string, len(filenames)),
		byfile: make(map[string]string, len(filenames)),
	}

	// Sorted alias order keeps the reported collision stable.
	aliasSlugs := make([]string, 0, len(aliases))
	for slug := range aliases {
		aliasSlugs = append(aliasSlugs, slug)
	}
	sort.Strings(aliasSlugs)

	for _, slug := range aliasSlugs {
		target := aliases[slug]
		if _, ok := files[target]; !ok {
			return nil, errors.NewAliasCollisionError(errors.ErrCodeAliasTarget,
				fmt.Sprintf("alias %q targets unknown file %q", slug, target)).WithSubject(slug)
		}
		if prev, taken := r.byfile[target]; taken {
			return nil, errors.NewAliasCollisionError(errors.ErrCodeAliasCollision,
				fmt.Sprintf("slugs %q and %q both map to file %q", prev, slug, target)).WithSubject(slug)
		}
		if _, shadow := files[slug]; shadow && slug != target {
			return nil, errors.NewAliasCollisionError(errors.ErrCodeAliasCollision,
				fmt.Sprintf("alias %q shadows file %q", slug, slug)).WithSubject(slug)
		}
		r.byslug[slug] = target
		r.byfile[target] = slug
	}

	for f := range files {
		if _, aliased := r.byfile[f]; aliased {
			continue
		}
		r.byslug[f] = f
		r.byfile[f] = f
	}

	r.slugs = make([]string, 0, len(r.byslug))
	for slug := range r.byslug {
		r.slugs = append(r.slugs, slug)
	}
	sort.Strings(r.slugs)

	return r, nil
}

// Resolve returns the filename for slug, or a not-found error.
func (r *Resolver) Resolve(slug string) (string, error) {
	if f, ok := r.byslug[slug]; ok {
		return f, nil
	}

	return "", errors.NewNotFoundError(errors.ErrCodeSlugNotFound, "unknown slug").WithSubject(slug)
}

// SlugFor returns the public slug of a content file.
func (r *Resolver) SlugFor(filename string) (string, bool) {
	slug, ok := r.byfile[filename]

	return slug, ok
}

// Slugs returns every known slug, sorted.
func (r *Resolver) Slugs() []string {
	return append([]string(nil), r.slugs...)
}

// Len returns the number of known slugs.
func (r *Resolver) Len() int { return len(r.slugs) }
