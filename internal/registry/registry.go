// Package registry maps component identifiers named in content documents to
// renderable calculator implementations.
//
// Implementations are registered on a Builder at startup; Build freezes the
// table into an immutable Registry that is safe for concurrent reads.
// Resolving an unknown identifier never fails: it yields the NotImplemented
// placeholder so a page still renders.
package registry

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/a-h/templ"

	"github.com/quick-calculator/calcdir/internal/errors"
)

// PlaceholderMessage is shown where an unregistered calculator would render.
const PlaceholderMessage = "Calculator component not yet implemented."

// Props is the data handed to a calculator when it renders.
type Props struct {
	Slug     string
	Title    string
	Category string
	// Labels carries locale-specific UI strings for the widget.
	Labels map[string]any
}

// Calculator renders one calculator widget.
type Calculator interface {
	Render(locale string, props Props) templ.Component
}

// CalculatorFunc adapts a function to the Calculator interface.
type CalculatorFunc func(locale string, props Props) templ.Component

// Render calls f.
func (f CalculatorFunc) Render(locale string, props Props) templ.Component {
	return f(locale, props)
}

// Resolution is the outcome of resolving a component id.
type Resolution struct {
	ID         string
	Calculator Calculator
	Registered bool
}

// Builder collects registrations before the registry is frozen.
type Builder struct {
	mutex       sync.Mutex
	calculators map[string]Calculator
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{calculators: make(map[string]Calculator)}
}

// Register adds an implementation under id. Empty ids, nil implementations
// and duplicate ids are rejected.
func (b *Builder) Register(id string, impl Calculator) error {
	if id == "" {
		return errors.NewValidationError(errors.ErrCodeEmptyComponentID, "component id must not be empty")
	}
	if impl == nil {
		return errors.NewValidationError(errors.ErrCodeNilComponent, "nil implementation").WithSubject(id)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if _, exists := b.calculators[id]; exists {
		return errors.NewValidationError(errors.ErrCodeDuplicateComponent,
			fmt.Sprintf("component %q registered twice", id)).WithSubject(id)
	}
	b.calculators[id] = impl

	return nil
}

// MustRegister is Register for static catalogs; it panics on error.
func (b *Builder) MustRegister(id string, impl Calculator) {
	if err := b.Register(id, impl); err != nil {
		panic(err)
	}
}

// Build freezes the registrations. The builder may keep being used; later
// registrations do not affect registries already built.
func (b *Builder) Build() *Registry {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	r := &Registry{
		calculators: make(map[string]Calculator, len(b.calculators)),
		ids:         make([]string, 0, len(b.calculators)),
	}
	for id, impl := range b.calculators {
		r.calculators[id] = impl
		r.ids = append(r.ids, id)
	}
	sort.Strings(r.ids)

	return r
}

// Registry is an immutable id -> Calculator table.
type Registry struct {
	calculators map[string]Calculator
	ids         []string
}

// Resolve looks up id. Unknown ids resolve to the NotImplemented placeholder
// with Registered false.
func (r *Registry) Resolve(id string) Resolution {
	if impl, ok := r.calculators[id]; ok {
		return Resolution{ID: id, Calculator: impl, Registered: true}
	}

	return Resolution{ID: id, Calculator: NotImplemented(id), Registered: false}
}

// Get returns the implementation registered under id.
func (r *Registry) Get(id string) (Calculator, bool) {
	impl, ok := r.calculators[id]

	return impl, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.calculators[id]

	return ok
}

// IDs returns every registered id, sorted.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.ids...)
}

// Count returns the number of registered components.
func (r *Registry) Count() int { return len(r.ids) }

// NotImplemented returns the placeholder calculator for id.
func NotImplemented(id string) Calculator {
	return CalculatorFunc(func(_ string, props Props) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			_, err := fmt.Fprintf(w,
				`<div class="calculator-placeholder" data-component="%s" data-slug="%s"><p>%s</p></div>`,
				templ.EscapeString(id), templ.EscapeString(props.Slug), PlaceholderMessage)

			return err
		})
	})
}
