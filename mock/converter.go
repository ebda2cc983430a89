package mock

import "github.com/fwojciec/qscrape"

var _ qscrape.Converter = (*Converter)(nil)

// Converter is a mock implementation of qscrape.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
