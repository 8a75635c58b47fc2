package errors

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Failure records one (locale, slug) unit of work that could not complete.
type Failure struct {
	Locale    string
	Slug      string
	Err       error
	Timestamp time.Time
}

// Error implements the error interface
func (f Failure) Error() string {
	return fmt.Sprintf("%s/%s: %v", f.Locale, f.Slug, f.Err)
}

// Unwrap returns the underlying error
func (f Failure) Unwrap() error {
	return f.Err
}

// Collector gathers per-path failures from concurrent workers so one broken
// path never aborts its siblings.
type Collector struct {
	failures []Failure
	mutex    sync.Mutex
}

// NewCollector creates a new failure collector
func NewCollector() *Collector {
	return &Collector{
		failures: make([]Failure, 0),
	}
}

// Add records a failure. Nil errors are ignored.
func (c *Collector) Add(locale, slug string, err error) {
	if err == nil {
		return
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.failures = append(c.failures, Failure{
		Locale:    locale,
		Slug:      slug,
		Err:       err,
		Timestamp: time.Now(),
	})
}

// Failures returns a copy of the recorded failures sorted by slug, then locale.
func (c *Collector) Failures() []Failure {
	c.mutex.Lock()
	result := make([]Failure, len(c.failures))
	copy(result, c.failures)
	c.mutex.Unlock()

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Slug != result[j].Slug {
			return result[i].Slug < result[j].Slug
		}
		return result[i].Locale < result[j].Locale
	})
	return result
}

// Len returns the number of recorded failures
func (c *Collector) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.failures)
}

// HasFailures returns true if anything failed
func (c *Collector) HasFailures() bool {
	return c.Len() > 0
}

// CountByType tallies failures by ErrorType. Errors outside the taxonomy are
// counted under ErrorTypeInternal.
func (c *Collector) CountByType() map[ErrorType]int {
	counts := make(map[ErrorType]int)
	for _, f := range c.Failures() {
		t := TypeOf(f.Err)
		if t == "" {
			t = ErrorTypeInternal
		}
		counts[t]++
	}
	return counts
}
