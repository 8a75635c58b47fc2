//go:build property
// +build property

package resolver

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestResolverIsBijective checks that every known slug resolves, that no two
// slugs share a file, and that every file is reachable.
func TestResolverIsBijective(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("slug to filename is total and injective", prop.ForAll(
		func(n int, aliasEvery int) bool {
			filenames := make([]string, n)
			aliases := make(map[string]string)
			for i := 0; i < n; i++ {
				filenames[i] = fmt.Sprintf("calc-%03d", i)
				if aliasEvery > 0 && i%aliasEvery == 0 {
					aliases[filenames[i]+"-calculator"] = filenames[i]
				}
			}

			r, err := New(filenames, aliases)
			if err != nil {
				return false
			}

			seen := make(map[string]string)
			for _, slug := range r.Slugs() {
				file, err := r.Resolve(slug)
				if err != nil {
					return false
				}
				if prev, dup := seen[file]; dup && prev != slug {
					return false
				}
				seen[file] = slug
			}

			return len(seen) == n && r.Len() == n
		},
		gen.IntRange(0, 150),
		gen.IntRange(0, 7),
	))

	properties.TestingRun(t)
}
