// Package bloom tracks visited result pages using a Bloom filter.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
)

// DefaultFalsePositiveRate keeps the chance of mistaking a new page for a
// visited one negligible for crawls of a few thousand pages.
const DefaultFalsePositiveRate = 1e-6

// Visited is a set of page URLs. URLs that differ only by fragment are the
// same page.
type Visited struct {
	f *bloom.BloomFilter
}

// NewVisited creates a set sized for n pages with the given false positive
// rate. A rate outside (0, 1) falls back to DefaultFalsePositiveRate.
func NewVisited(n uint, fpRate float64) *Visited {
	if n == 0 {
		n = 1
	}
	if fpRate <= 0 || fpRate >= 1 {
		fpRate = DefaultFalsePositiveRate
	}
	return &Visited{f: bloom.NewWithEstimates(n, fpRate)}
}

// Visit records the page and reports whether it was new. A false result
// means the page was (almost certainly) visited before.
func (v *Visited) Visit(url string) bool {
	return !v.f.TestOrAddString(normalize(url))
}

func normalize(url string) string {
	if i := strings.IndexByte(url, '#'); i != -1 {
		return url[:i]
	}
	return url
}
