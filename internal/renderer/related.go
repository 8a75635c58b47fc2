package renderer

// DefaultRelatedLimit caps the related calculators listed on a page.
const DefaultRelatedLimit = 6

var relatedHeadings = map[string]string{
	"en": "Related Calculators",
	"es": "Calculadoras Relacionadas",
	"pt": "Calculadoras Relacionadas",
	"fr": "Calculateurs Associés",
	"de": "Verwandte Rechner",
	"nl": "Gerelateerde rekenmachines",
}

// RelatedHeading returns the localized heading of the related list.
func RelatedHeading(code string) string {
	if h, ok := relatedHeadings[code]; ok {
		return h
	}

	return relatedHeadings["en"]
}

// WithRelated returns a copy of r that cross-links pages. related maps a
// slug to hand-picked slugs; limit caps the list and zero disables it.
func (r *Renderer) WithRelated(related map[string][]string, limit int) *Renderer {
	c := *r
	c.related = related
	c.relatedLimit = limit

	return &c
}

// Related lists the calculators linked from slug's page in code: the
// hand-picked ones first, then the rest of its category. Only calculators
// published in code with content for it are listed.
func (r *Renderer) Related(code, slug string) []IndexEntry {
	if r.relatedLimit <= 0 {
		return nil
	}
	record, err := r.store.Lookup(slug)
	if err != nil {
		return nil
	}

	seen := map[string]bool{record.Slug: true}
	var out []IndexEntry
	add := func(e IndexEntry) {
		if len(out) >= r.relatedLimit || seen[e.Slug] {
			return
		}
		seen[e.Slug] = true
		out = append(out, e)
	}

	for _, other := range r.related[record.Slug] {
		if e, ok := r.entry(code, other); ok {
			add(e)
		}
	}
	for _, e := range r.entries(code)[record.Category] {
		add(e)
	}

	return out
}
